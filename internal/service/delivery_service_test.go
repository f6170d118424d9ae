package service

import (
	"Herald/internal/model"
	"Herald/internal/repository"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Herald/internal/pkg/relay"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationRepo) GetListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*model.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationRepo) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, userID string, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// fakeRelay 记录发布调用，不支持订阅
type fakeRelay struct {
	mu         sync.Mutex
	published  map[string][]string
	publishErr error
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{published: make(map[string][]string)}
}

func (r *fakeRelay) Publish(_ context.Context, channel string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.publishErr != nil {
		return r.publishErr
	}
	r.published[channel] = append(r.published[channel], string(payload))
	return nil
}

func (r *fakeRelay) Subscribe(_ context.Context, _ string) relay.Subscription {
	return nil
}

const likeEventBody = `{"eventId":"e1","type":"POST_LIKE","targetUserId":"u1","userId":"u9","postId":"p1","postTitle":"Hello World"}`

func TestHandleMessage_Success(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.EventID == "e1" && n.UserID == "u1" && n.Type == "LIKE"
	})).Return(nil)

	r := newFakeRelay()
	svc := NewDeliveryService(repo, r, nil)

	err := svc.HandleMessage(context.Background(), likeEventBody)
	require.NoError(t, err)

	require.Len(t, r.published["notification:u1"], 1)
	assert.Contains(t, r.published["notification:u1"][0], `"eventId":"e1"`)
	assert.Contains(t, r.published["notification:u1"][0], `"triggeredById":"u9"`)
	repo.AssertExpectations(t)
}

func TestHandleMessage_MissingTarget(t *testing.T) {
	repo := new(mockNotificationRepo)
	r := newFakeRelay()
	svc := NewDeliveryService(repo, r, nil)

	err := svc.HandleMessage(context.Background(), `{"eventId":"e1","type":"POST_LIKE"}`)
	assert.ErrorIs(t, err, ErrEventMissingTarget)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, r.published)
}

func TestHandleMessage_PersistError(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	r := newFakeRelay()
	svc := NewDeliveryService(repo, r, nil)

	err := svc.HandleMessage(context.Background(), likeEventBody)
	assert.Error(t, err)
	assert.Empty(t, r.published)
}

func TestHandleMessage_DuplicateEventStillBroadcasts(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEvent)

	r := newFakeRelay()
	svc := NewDeliveryService(repo, r, nil)

	err := svc.HandleMessage(context.Background(), likeEventBody)
	require.NoError(t, err)
	assert.Len(t, r.published["notification:u1"], 1)
}

func TestHandleMessage_PublishError(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	r := newFakeRelay()
	r.publishErr = errors.New("redis down")
	svc := NewDeliveryService(repo, r, nil)

	err := svc.HandleMessage(context.Background(), likeEventBody)
	assert.Error(t, err)
}
