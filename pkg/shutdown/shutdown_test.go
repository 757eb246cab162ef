package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// 所有具名回调都被执行，Shutdown 等它们全部完成才返回
func TestShutdownRunsAllCallbacks(t *testing.T) {
	m := NewManager()
	var ran int32
	m.OnShutdown("final-report", func(ctx context.Context, wg *sync.WaitGroup) {
		atomic.AddInt32(&ran, 1)
	})
	m.OnShutdown("cleanup", func(ctx context.Context, wg *sync.WaitGroup) {
		atomic.AddInt32(&ran, 1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Shutdown(ctx)

	if got := atomic.LoadInt32(&ran); got != 2 {
		t.Errorf("执行的回调数 = %d, want 2", got)
	}
}

// 卡住的回调不会让 Shutdown 越过 context 超时无限阻塞
func TestShutdownHonorsTimeout(t *testing.T) {
	m := NewManager()
	block := make(chan struct{})
	defer close(block)
	m.OnShutdown("stuck", func(ctx context.Context, wg *sync.WaitGroup) {
		<-block
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	m.Shutdown(ctx)
	if time.Since(start) > time.Second {
		t.Error("Shutdown 应在超时后尽快返回")
	}
}
