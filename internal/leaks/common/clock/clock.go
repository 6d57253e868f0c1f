package clock

import "time"

// Clock abstracts time for components that need it (run timing, rule
// ingestion timestamps) so tests can control the current moment.
type Clock interface {
	Now() time.Time
}

// RealClock returns the system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a manually advanced clock for tests.
type MockClock struct {
	currentTime time.Time
}

// NewMockClock returns a MockClock fixed at the given time.
func NewMockClock(at time.Time) *MockClock {
	return &MockClock{currentTime: at}
}

func (c *MockClock) Now() time.Time {
	return c.currentTime
}

// Advance moves the mock clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.currentTime = c.currentTime.Add(d)
}
