package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/domain"
	"storybook-server/internal/service"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

// GenerateStory provides a mock function with given fields: ctx, req, apiKey
func (_m *MockTextGenerator) GenerateStory(ctx context.Context, req domain.StoryRequest, apiKey string) (*domain.StoryBook, error) {
	ret := _m.Called(ctx, req, apiKey)

	var r0 *domain.StoryBook
	if rf, ok := ret.Get(0).(func(context.Context, domain.StoryRequest, string) *domain.StoryBook); ok {
		r0 = rf(ctx, req, apiKey)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*domain.StoryBook)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.StoryRequest, string) error); ok {
		r1 = rf(ctx, req, apiKey)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockTextGenerator creates a new instance of MockTextGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.TextGenerator = (*MockTextGenerator)(nil)
