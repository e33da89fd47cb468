package pipeline

import (
	"context"
	"fmt"
	"sync"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

type AutoState int

const (
	AutoIdle AutoState = iota
	AutoPending
	AutoConsumed
)

func (s AutoState) String() string {
	switch s {
	case AutoPending:
		return "pending"
	case AutoConsumed:
		return "consumed"
	default:
		return "idle"
	}
}

// AutoOpener opens the dialog for a requested action exactly once per key,
// waiting for the action list if it is not loaded yet. The last consumed
// key survives a remount through the ConsumedKeyStore.
type AutoOpener struct {
	mu      sync.Mutex
	state   AutoState
	key     domain.ActionKey
	actions []domain.ActionState
	loaded  bool

	store ConsumedKeyStore
	scope string
	open  func(domain.ActionKey)
	ack   func(domain.ActionKey)
}

// NewAutoOpener builds an opener for one viewer on one booking. open shows
// the dialog; ack tells the caller the request was honoured.
func NewAutoOpener(store ConsumedKeyStore, viewer domain.Viewer, bookingNumber string, open, ack func(domain.ActionKey)) *AutoOpener {
	if store == nil {
		store = NewMemoryConsumedKeys()
	}
	return &AutoOpener{
		store: store,
		scope: fmt.Sprintf("%s:%d:%s", viewer.Role, viewer.ID, bookingNumber),
		open:  open,
		ack:   ack,
	}
}

func (a *AutoOpener) State() (AutoState, domain.ActionKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.key
}

// Request asks for key to be opened. A key that was already consumed for
// this scope is ignored.
func (a *AutoOpener) Request(ctx context.Context, key domain.ActionKey) error {
	if key == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.key == key && a.state != AutoIdle {
		return nil
	}
	last, err := a.store.LastConsumed(ctx, a.scope)
	if err != nil {
		return err
	}
	if last == key {
		a.state, a.key = AutoConsumed, key
		return nil
	}
	a.state, a.key = AutoPending, key
	return a.tryFire(ctx)
}

// ActionsLoaded feeds the latest resolved action list.
func (a *AutoOpener) ActionsLoaded(ctx context.Context, actions []domain.ActionState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = actions
	a.loaded = true
	return a.tryFire(ctx)
}

// DialogClosed returns the opener to idle. The consumed key stays recorded.
func (a *AutoOpener) DialogClosed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AutoConsumed {
		a.state = AutoIdle
	}
}

func (a *AutoOpener) tryFire(ctx context.Context) error {
	if a.state != AutoPending || !a.loaded || !containsAction(a.actions, a.key) {
		return nil
	}
	if err := a.store.MarkConsumed(ctx, a.scope, a.key); err != nil {
		return err
	}
	a.state = AutoConsumed
	logger.Debug("Auto-opening action", "scope", a.scope, "action", a.key)
	if a.open != nil {
		a.open(a.key)
	}
	if a.ack != nil {
		a.ack(a.key)
	}
	return nil
}

func containsAction(actions []domain.ActionState, key domain.ActionKey) bool {
	for _, s := range actions {
		if s.Key == key {
			return true
		}
	}
	return false
}
