package ports

import (
	"context"

	"github.com/bnema/cart-session-cli/internal/domain"
)

type EventSink interface {
	Dispatch(ctx context.Context, event domain.Event)
}
