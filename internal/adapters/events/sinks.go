package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
)

// LogSink writes every event to a structured logger. Failed events are logged at warn.
type LogSink struct {
	logger *slog.Logger
}

var _ ports.EventSink = (*LogSink)(nil)

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Dispatch(ctx context.Context, event domain.Event) {
	attrs := []slog.Attr{
		slog.String("event", event.Name()),
		slog.String("action", event.ActionID),
	}
	if event.CartID != "" {
		attrs = append(attrs, slog.String("cart_id", string(event.CartID)))
	}
	if event.Drawer != "" {
		attrs = append(attrs, slog.String("drawer", event.Drawer))
	}

	if event.Failed() {
		attrs = append(attrs,
			slog.String("error", event.Err.Error()),
			slog.String("kind", domain.Classify(event.Err).String()),
		)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cart event", attrs...)
		return
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "cart event", attrs...)
}

// Recorder keeps dispatched events in memory, in order.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ ports.EventSink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Dispatch(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, event := range events {
		names = append(names, event.Name())
	}
	return names
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

// Fanout forwards each event to every sink in order.
type Fanout []ports.EventSink

var _ ports.EventSink = Fanout(nil)

func (f Fanout) Dispatch(ctx context.Context, event domain.Event) {
	for _, sink := range f {
		if sink != nil {
			sink.Dispatch(ctx, event)
		}
	}
}
