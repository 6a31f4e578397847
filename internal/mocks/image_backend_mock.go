package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/service"
)

// MockImageBackend is a mock type for the ImageBackend type
type MockImageBackend struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt, size, quality
func (_m *MockImageBackend) Generate(ctx context.Context, prompt string, size string, quality string) ([]byte, error) {
	ret := _m.Called(ctx, prompt, size, quality)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) []byte); ok {
		r0 = rf(ctx, prompt, size, quality)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, prompt, size, quality)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Edit provides a mock function with given fields: ctx, prompt, size, quality, refPaths
func (_m *MockImageBackend) Edit(ctx context.Context, prompt string, size string, quality string, refPaths []string) ([]byte, error) {
	ret := _m.Called(ctx, prompt, size, quality, refPaths)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, []string) []byte); ok {
		r0 = rf(ctx, prompt, size, quality, refPaths)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string, []string) error); ok {
		r1 = rf(ctx, prompt, size, quality, refPaths)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockImageBackend creates a new instance of MockImageBackend. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockImageBackend(t interface {
	mock.TestingT
	Helper()
}) *MockImageBackend {
	m := &MockImageBackend{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ImageBackend = (*MockImageBackend)(nil)
