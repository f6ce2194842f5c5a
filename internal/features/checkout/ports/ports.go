package ports

import (
	"context"

	"postnet-delivery/internal/features/checkout/domain"
)

// SessionRepository defines the secondary port for checkout session storage.
type SessionRepository interface {
	// Get returns domain.ErrSessionNotFound when the session is unknown or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
}

// ValidateRequest carries what the host knows when the checkout is submitted.
type ValidateRequest struct {
	SessionID        string `json:"session_id"`
	ChosenMethod     string `json:"chosen_method"`
	DestinationStore string `json:"destination_store"`
	Cookie           string `json:"-"`
}

// CaptureRequest carries the destination sources available when an order is created.
type CaptureRequest struct {
	SessionID        string `json:"session_id"`
	DestinationStore string `json:"destination_store"`
	Cookie           string `json:"-"`
}

// CheckoutService is the primary port for the store selection flow.
type CheckoutService interface {
	CreateSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	SelectMethod(ctx context.Context, id, methodKey, label string) (*domain.Session, error)
	ChooseStore(ctx context.Context, id string, sel domain.DestinationSelection) (*domain.Session, error)
	Validate(ctx context.Context, req ValidateRequest) error
	CaptureDestination(ctx context.Context, orderID int64, req CaptureRequest) (domain.DestinationSelection, bool, error)
}
