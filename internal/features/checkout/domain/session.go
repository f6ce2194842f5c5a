package domain

import (
	"errors"
	"strings"
	"time"

	rates "postnet-delivery/internal/features/rates/domain"
)

// RequiredNotice is shown when a store-to-store order has no destination store.
const RequiredNotice = "Destination Store is a required field."

var (
	// ErrDestinationRequired is returned when a store-to-store checkout has no destination store.
	ErrDestinationRequired = errors.New("destination store is required")
	// ErrSelectorHidden is returned when a store is chosen while store-to-store is not the active method.
	ErrSelectorHidden = errors.New("store selector is not shown")
	// ErrInvalidSelection is returned for a selection without a store code.
	ErrInvalidSelection = errors.New("invalid store selection")
	// ErrSessionNotFound is returned when the checkout session does not exist or expired.
	ErrSessionNotFound = errors.New("checkout session not found")
)

// State is the position of a checkout in the store selection flow.
type State string

const (
	StateNoSelector    State = "no_selector"
	StateNoStoreChosen State = "no_store_chosen"
	StateStoreChosen   State = "store_chosen"
)

// SelectorShown reports whether the store selector is displayed in this state.
func (s State) SelectorShown() bool {
	return s == StateNoStoreChosen || s == StateStoreChosen
}

// Session is the server side of the store selection widget for one checkout.
type Session struct {
	ID           string                `json:"id"`
	ChosenMethod string                `json:"chosen_method"`
	State        State                 `json:"state"`
	Selection    *DestinationSelection `json:"selection,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// NewSession starts a checkout with no shipping method chosen.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, State: StateNoSelector, UpdatedAt: now}
}

// SelectMethod records the active shipping method. Store-to-store shows the
// selector, restoring a held selection. Anything else hides it.
func (s *Session) SelectMethod(methodKey string, kind rates.RateKind, now time.Time) {
	s.ChosenMethod = methodKey
	s.UpdatedAt = now

	if kind != rates.RateKindStoreToStore {
		s.State = StateNoSelector
		return
	}
	if s.Selection != nil && !s.Selection.IsZero() {
		s.State = StateStoreChosen
		return
	}
	s.State = StateNoStoreChosen
}

// ChooseStore records the destination store.
func (s *Session) ChooseStore(sel DestinationSelection, now time.Time) error {
	if !s.State.SelectorShown() {
		return ErrSelectorHidden
	}

	sel.Code = strings.TrimSpace(sel.Code)
	sel.Name = strings.TrimSpace(sel.Name)
	if sel.IsZero() {
		return ErrInvalidSelection
	}
	if sel.Name == "" {
		sel.Name = sel.Code
	}

	s.Selection = &sel
	s.State = StateStoreChosen
	s.UpdatedAt = now
	return nil
}

// Submit checks the checkout can be placed.
func (s *Session) Submit() error {
	if s.State == StateNoStoreChosen {
		return ErrDestinationRequired
	}
	return nil
}

// Destination returns the held selection, if any.
func (s *Session) Destination() (DestinationSelection, bool) {
	if s.Selection == nil || s.Selection.IsZero() {
		return DestinationSelection{}, false
	}
	return *s.Selection, true
}
