package capture

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// MockProvider is a mock implementation of contract.CaptureProvider for testing.
type MockProvider struct {
	mock.Mock
}

var _ contract.CaptureProvider = &MockProvider{} // Compile-time check

// Capture implements the contract.CaptureProvider interface.
func (m *MockProvider) Capture(ctx context.Context, req contract.CaptureRequest) (*schema.Snapshot, error) {
	ret := m.Called(ctx, req)
	snap, _ := ret.Get(0).(*schema.Snapshot)
	return snap, ret.Error(1)
}
