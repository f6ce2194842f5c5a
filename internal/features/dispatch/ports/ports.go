package ports

import (
	"context"

	checkout "postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/dispatch/domain"
	settings "postnet-delivery/internal/features/settings/domain"
)

// Courier submits orders to the courier API.
// This is a Secondary Port (Driven Port).
type Courier interface {
	Dispatch(ctx context.Context, creds domain.Credentials, payload domain.Payload) (*domain.Result, error)
}

// SessionReader loads the checkout session an order was placed from.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (*checkout.Session, error)
}

// SettingsReader reads the merchant configuration.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// OrderDispatcher is the primary port for the order-received hook.
type OrderDispatcher interface {
	HandleOrderReceived(ctx context.Context, orderID int64, sessionID string) (*domain.Outcome, error)
}
