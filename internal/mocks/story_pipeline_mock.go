package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/domain"
	"storybook-server/internal/handler"
)

// MockStoryProducer is a mock type for the StoryProducer type
type MockStoryProducer struct {
	mock.Mock
}

// ProduceStory provides a mock function with given fields: ctx, req
func (_m *MockStoryProducer) ProduceStory(ctx context.Context, req domain.StoryRequest) (*domain.StoryBook, string) {
	ret := _m.Called(ctx, req)

	var r0 *domain.StoryBook
	if rf, ok := ret.Get(0).(func(context.Context, domain.StoryRequest) *domain.StoryBook); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*domain.StoryBook)
		}
	}

	var r1 string
	if rf, ok := ret.Get(1).(func(context.Context, domain.StoryRequest) string); ok {
		r1 = rf(ctx, req)
	} else {
		if ret.Get(1) != nil {
			r1 = ret.Get(1).(string)
		}
	}

	return r0, r1
}

// NewMockStoryProducer creates a new instance of MockStoryProducer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryProducer(t interface {
	mock.TestingT
	Helper()
}) *MockStoryProducer {
	m := &MockStoryProducer{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ handler.StoryProducer = (*MockStoryProducer)(nil)

// MockStoryIllustrator is a mock type for the StoryIllustrator type
type MockStoryIllustrator struct {
	mock.Mock
}

// Illustrate provides a mock function with given fields: ctx, book
func (_m *MockStoryIllustrator) Illustrate(ctx context.Context, book *domain.StoryBook) (*domain.StoryBook, error) {
	ret := _m.Called(ctx, book)

	var r0 *domain.StoryBook
	if rf, ok := ret.Get(0).(func(context.Context, *domain.StoryBook) *domain.StoryBook); ok {
		r0 = rf(ctx, book)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*domain.StoryBook)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *domain.StoryBook) error); ok {
		r1 = rf(ctx, book)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockStoryIllustrator creates a new instance of MockStoryIllustrator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryIllustrator(t interface {
	mock.TestingT
	Helper()
}) *MockStoryIllustrator {
	m := &MockStoryIllustrator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ handler.StoryIllustrator = (*MockStoryIllustrator)(nil)
