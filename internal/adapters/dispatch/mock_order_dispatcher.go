package dispatch

import (
	"context"
	"fmt"
	"sync"

	"delivery-schedule-service/internal/domain"
)

// In-memory OrderDispatcher for tests and for local runs without a
// downstream order service. Dates listed in FailDates reject dispatch.
type MockOrderDispatcher struct {
	mu         sync.Mutex
	FailDates  map[string]bool
	Dispatched []domain.DeliveryOccurrence
}

func NewMockOrderDispatcher() *MockOrderDispatcher {
	return &MockOrderDispatcher{FailDates: map[string]bool{}}
}

func (m *MockOrderDispatcher) Dispatch(_ context.Context, occ domain.DeliveryOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := occ.Date.Format("2006-01-02")
	if m.FailDates[day] {
		return fmt.Errorf("mock dispatcher: refusing date %s", day)
	}

	m.Dispatched = append(m.Dispatched, occ)
	return nil
}

func (m *MockOrderDispatcher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Dispatched)
}
