package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// IsInsideWorkTree implements the GitClient interface.
func (m *MockGitClient) IsInsideWorkTree(ctx context.Context, dir string) (bool, error) {
	ret := m.Called(ctx, dir)
	return ret.Bool(0), ret.Error(1)
}

// LineLog implements the GitClient interface.
func (m *MockGitClient) LineLog(ctx context.Context, dir string, spec string) ([]byte, error) {
	ret := m.Called(ctx, dir, spec)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}
