// Package fairness reproduces the commit-reveal scheme used by dice sites:
// the server commits to a hash of a secret seed before the round and reveals
// the seed afterwards, so the client can verify the outcome was not altered.
// It doubles as an offline bet generator for fake-betting mode.
package fairness

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// houseEdgePayout is the payout percentage the sites apply when deriving the
// winning zone from a multiplier (2.5% house edge).
const houseEdgePayout = 97.5

// DeriveRoll computes the roll for a single round of the commit-reveal
// scheme. The message is clientSeed || serverSeedHex || nonce (8-byte
// big-endian); the HMAC-SHA256 key is the server seed hex itself. The first
// 4 bytes of the tag, read as a little-endian uint32, reduced mod 10000,
// give the roll. Identical inputs always yield the identical roll.
func DeriveRoll(clientSeed, serverSeedHex string, nonce uint64) uint32 {
	msg := make([]byte, 0, len(clientSeed)+len(serverSeedHex)+8)
	msg = append(msg, clientSeed...)
	msg = append(msg, serverSeedHex...)
	msg = binary.BigEndian.AppendUint64(msg, nonce)

	mac := hmac.New(sha256.New, []byte(serverSeedHex))
	mac.Write(msg)
	tag := mac.Sum(nil)

	return binary.LittleEndian.Uint32(tag[:4]) % 10000
}

// Classify reports whether a roll wins for the given multiplier and
// direction. The winning zone is floor(10000 * (97.5/multiplier) / 100)
// numbers wide, anchored at the top for high bets and the bottom for low
// bets. Pure function, no hidden state.
func Classify(roll uint32, multiplier float64, isHigh bool) bool {
	target := uint32(10000 * ((houseEdgePayout / multiplier) / 100))
	if isHigh {
		return roll > 10000-target
	}
	return roll < target
}

// NewServerSeed draws 64 random bytes and returns the hex SHA-256 digest.
// The digest is both the effective server seed and the published commitment
// for the round it will settle.
func NewServerSeed() (string, error) {
	var raw [64]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw[:])
	return hex.EncodeToString(sum[:]), nil
}

// Receipt is one settled simulated bet.
type Receipt struct {
	Number           uint32
	Win              bool
	Stake            float64
	Multiplier       float64
	WinAmount        float64 // stake*(multiplier-1) on win, stake on loss
	HashPreviousRoll string
	HashNextRoll     string
	Nonce            uint64
}

// Simulator holds the hash-chained seed state for offline rounds. One
// instance is constructed explicitly and handed to whichever session needs
// it; all chain advancement happens under the internal lock with no I/O
// held.
type Simulator struct {
	mu sync.Mutex

	hashPreviousRoll string
	currentSeedHash  string
	hashNextRoll     string

	previousNonce uint64
	currentNonce  uint64
	nextNonce     uint64

	previousRoll uint32
	currentRoll  uint32
	nextRoll     uint32

	primed bool
}

// NewSimulator returns a simulator with an empty chain; the first bet primes
// the previous/current/next window before settling.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// step advances the chain one position: a fresh seed is drawn and hashed for
// the next commitment, the current roll becomes the previous one, and the
// nonce moves forward. Caller must hold mu.
func (s *Simulator) step(clientSeed string) error {
	seedHash, err := NewServerSeed()
	if err != nil {
		return err
	}
	roll := DeriveRoll(clientSeed, seedHash, s.currentNonce)

	s.hashPreviousRoll = s.currentSeedHash
	s.currentSeedHash = s.hashNextRoll
	s.hashNextRoll = seedHash

	s.previousNonce = s.currentNonce
	s.currentNonce = s.nextNonce
	s.nextNonce++

	s.previousRoll = s.currentRoll
	s.currentRoll = s.nextRoll
	s.nextRoll = roll
	return nil
}

// Bet settles one simulated round and advances the chain one step. On the
// first round of a seed epoch the chain is warmed so that the
// previous/current/next window is fully populated before classification.
func (s *Simulator) Bet(clientSeed string, isHigh bool, stake, multiplier float64) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.primed {
		for i := 0; i < 4; i++ {
			if err := s.step(clientSeed); err != nil {
				return nil, err
			}
		}
		s.primed = true
	}
	if err := s.step(clientSeed); err != nil {
		return nil, err
	}

	win := Classify(s.currentRoll, multiplier, isHigh)
	amount := stake
	if win {
		amount = stake * (multiplier - 1)
	}

	return &Receipt{
		Number:           s.currentRoll,
		Win:              win,
		Stake:            stake,
		Multiplier:       multiplier,
		WinAmount:        amount,
		HashPreviousRoll: s.hashPreviousRoll,
		HashNextRoll:     s.hashNextRoll,
		Nonce:            s.currentNonce,
	}, nil
}

// ResetSeed starts a new seed epoch: the chain is cleared and the nonce
// restarts at zero. Called when the client seed is rotated.
func (s *Simulator) ResetSeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashPreviousRoll = ""
	s.currentSeedHash = ""
	s.hashNextRoll = ""
	s.previousNonce = 0
	s.currentNonce = 0
	s.nextNonce = 0
	s.previousRoll = 0
	s.currentRoll = 0
	s.nextRoll = 0
	s.primed = false
}

// Nonce returns the nonce of the most recently settled round.
func (s *Simulator) Nonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentNonce
}
