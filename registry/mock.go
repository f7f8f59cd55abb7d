package registry

import (
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// MockDappRegistry mocks the interfaces.DappRegistry interface for handler
// and client tests.
type MockDappRegistry struct {
	mock.Mock
}

var _ interfaces.DappRegistry = (*MockDappRegistry)(nil)

// Count mocks the Count method.
func (m *MockDappRegistry) Count() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

// At mocks the At method.
func (m *MockDappRegistry) At(index uint64) (interfaces.Entry, error) {
	args := m.Called(index)
	return args.Get(0).(interfaces.Entry), args.Error(1)
}

// Get mocks the Get method.
func (m *MockDappRegistry) Get(id interfaces.DappID) (interfaces.Entry, error) {
	args := m.Called(id)
	return args.Get(0).(interfaces.Entry), args.Error(1)
}

// Register mocks the Register method.
func (m *MockDappRegistry) Register(id interfaces.DappID, paid *big.Int, caller interfaces.Identity) error {
	args := m.Called(id, paid, caller)
	return args.Error(0)
}

// Unregister mocks the Unregister method.
func (m *MockDappRegistry) Unregister(id interfaces.DappID, caller interfaces.Identity) error {
	args := m.Called(id, caller)
	return args.Error(0)
}

// Meta mocks the Meta method.
func (m *MockDappRegistry) Meta(id interfaces.DappID, key string) ([]byte, error) {
	args := m.Called(id, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// SetMeta mocks the SetMeta method.
func (m *MockDappRegistry) SetMeta(id interfaces.DappID, key string, value []byte, caller interfaces.Identity) error {
	args := m.Called(id, key, value, caller)
	return args.Error(0)
}

// SetDappOwner mocks the SetDappOwner method.
func (m *MockDappRegistry) SetDappOwner(id interfaces.DappID, newOwner interfaces.Identity, caller interfaces.Identity) error {
	args := m.Called(id, newOwner, caller)
	return args.Error(0)
}

// Fee mocks the Fee method.
func (m *MockDappRegistry) Fee() *big.Int {
	args := m.Called()
	return args.Get(0).(*big.Int)
}

// SetFee mocks the SetFee method.
func (m *MockDappRegistry) SetFee(newFee *big.Int, caller interfaces.Identity) error {
	args := m.Called(newFee, caller)
	return args.Error(0)
}

// Balance mocks the Balance method.
func (m *MockDappRegistry) Balance() *big.Int {
	args := m.Called()
	return args.Get(0).(*big.Int)
}

// Drain mocks the Drain method.
func (m *MockDappRegistry) Drain(destination interfaces.Identity, caller interfaces.Identity) (*big.Int, error) {
	args := m.Called(destination, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

// Administrator mocks the Administrator method.
func (m *MockDappRegistry) Administrator() interfaces.Identity {
	args := m.Called()
	return args.Get(0).(interfaces.Identity)
}

// TransferAdministrator mocks the TransferAdministrator method.
func (m *MockDappRegistry) TransferAdministrator(newAdmin interfaces.Identity, caller interfaces.Identity) error {
	args := m.Called(newAdmin, caller)
	return args.Error(0)
}
