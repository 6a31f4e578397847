package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storybook-server/internal/domain"
	"storybook-server/internal/repository"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

// Insert provides a mock function with given fields: ctx, book
func (_m *MockStoryRepository) Insert(ctx context.Context, book *domain.StoryBook) (*repository.StoryRecord, error) {
	ret := _m.Called(ctx, book)

	var r0 *repository.StoryRecord
	if rf, ok := ret.Get(0).(func(context.Context, *domain.StoryBook) *repository.StoryRecord); ok {
		r0 = rf(ctx, book)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*repository.StoryRecord)
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

// FindAll provides a mock function with given fields: ctx
func (_m *MockStoryRepository) FindAll(ctx context.Context) ([]repository.StoryRecord, error) {
	ret := _m.Called(ctx)

	var r0 []repository.StoryRecord
	if rf, ok := ret.Get(0).(func(context.Context) []repository.StoryRecord); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]repository.StoryRecord)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*repository.StoryRecord, error) {
	ret := _m.Called(ctx, id)

	var r0 *repository.StoryRecord
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *repository.StoryRecord); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*repository.StoryRecord)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteByID provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)
