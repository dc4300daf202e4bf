package payments

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"villastay/internal/domain/shared/money"
)

var ErrUnknownIntent = errors.New("payments: unknown intent")

type intentState struct {
	bookingID string
	amount    money.Money
	captured  bool
}

// MemoryProvider simulates the payment provider for local runs and tests.
// Every created intent succeeds; captures and refunds are recorded in memory.
type MemoryProvider struct {
	mu      sync.Mutex
	intents map[string]*intentState
	refunds map[string]money.Money
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		intents: make(map[string]*intentState),
		refunds: make(map[string]money.Money),
	}
}

func (p *MemoryProvider) CreateDepositIntent(_ context.Context, bookingID string, amount money.Money) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := "pi_" + uuid.NewString()
	p.intents[id] = &intentState{bookingID: bookingID, amount: amount}
	return id, nil
}

func (p *MemoryProvider) Capture(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	intent, ok := p.intents[intentID]
	if !ok {
		return ErrUnknownIntent
	}
	intent.captured = true
	return nil
}

func (p *MemoryProvider) Refund(_ context.Context, bookingID string, amount money.Money) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refunds[bookingID] = p.refunds[bookingID].Add(amount)
	return nil
}

// Captured reports whether the intent has been captured; used by tests.
func (p *MemoryProvider) Captured(intentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	intent, ok := p.intents[intentID]
	return ok && intent.captured
}

// RefundedTo returns the total refunded to a booking; used by tests.
func (p *MemoryProvider) RefundedTo(bookingID string) money.Money {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refunds[bookingID]
}
