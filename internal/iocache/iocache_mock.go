package iocache

import (
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockLedgerManager is a mock implementation of LedgerManager for testing.
type MockLedgerManager struct {
	mock.Mock
}

var _ contract.LedgerManager = &MockLedgerManager{} // Compile-time check

// GetRunStore implements the LedgerManager interface.
func (m *MockLedgerManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}
