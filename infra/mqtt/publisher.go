package mqtt

import (
	"context"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records orders in memory. It is used in tests and by the
// publish command's dry-run mode.
type MockPublisher struct {
	Orders  []coremqtt.ScheduleOrder
	FailIDs map[string]bool
	mu      sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailIDs: make(map[string]bool)}
}

// PublishSchedule records the order or returns an error when the vehicle is
// listed in FailIDs.
func (m *MockPublisher) PublishSchedule(_ context.Context, order coremqtt.ScheduleOrder) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[order.Schedule.Vehicle] {
		return "", fmt.Errorf("publish failed")
	}
	m.Orders = append(m.Orders, order)
	return fmt.Sprintf("cmd-%s-%s", order.Schedule.Location, order.Schedule.Vehicle), nil
}

// Sent returns a copy of the recorded orders.
func (m *MockPublisher) Sent() []coremqtt.ScheduleOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.ScheduleOrder(nil), m.Orders...)
}
