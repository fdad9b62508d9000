package recurrence

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockEvaluator implements the Evaluator interface for testing
type MockEvaluator struct {
	mock.Mock
}

// Occurrences implements the Evaluator interface
func (m *MockEvaluator) Occurrences(rule Rule) ([]time.Time, error) {
	args := m.Called(rule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
