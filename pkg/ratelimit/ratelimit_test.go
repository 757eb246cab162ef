package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketDrain(t *testing.T) {
	tb := NewTokenBucket(3, 0, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("第 %d 个令牌应放行", i+1)
		}
	}
	if tb.Allow() {
		t.Error("桶空后不应放行")
	}
	if tb.GetRemaining() != 0 {
		t.Errorf("剩余令牌 = %d, want 0", tb.GetRemaining())
	}
}

func TestTokenBucketWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 0, time.Hour)
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Error("空桶 + 超时 context 应返回错误")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(2, 2, 50*time.Millisecond)
	tb.Allow()
	tb.Allow()
	if tb.Allow() {
		t.Fatal("桶应已空")
	}

	// 整秒粒度补充：等待一秒后应重新放行
	tb.lastRefill = time.Now().Add(-time.Second)
	if !tb.Allow() {
		t.Error("补充后应放行")
	}
}
