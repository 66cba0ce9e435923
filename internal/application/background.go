package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Background runs best-effort persistence writes. Callers never wait on a task: Go returns
// immediately, the task runs on a context detached from the caller's cancellation, and its
// failure is only logged. Flush is for process shutdown and tests.
type Background struct {
	wg     conc.WaitGroup
	logger *slog.Logger

	mu       sync.Mutex
	reported *panics.Recovered
}

func NewBackground(logger *slog.Logger) *Background {
	if logger == nil {
		logger = slog.Default()
	}

	return &Background{logger: logger}
}

func (b *Background) Go(ctx context.Context, name string, task func(context.Context) error) {
	detached := context.WithoutCancel(ctx)
	b.wg.Go(func() {
		if err := task(detached); err != nil {
			b.logger.Warn("background task failed", "task", name, "error", err)
		}
	})
}

// Flush waits for every task started so far, or until ctx is done. The group keeps only its
// first panic, so a panic is reported by one Flush and later panics are not reported at all.
func (b *Background) Flush(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- b.unreported(b.wg.WaitAndRecover())
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Background) unreported(recovered *panics.Recovered) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if recovered == nil || recovered == b.reported {
		return nil
	}
	b.reported = recovered
	return fmt.Errorf("background task panicked: %w", recovered.AsError())
}
