package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
	"notify_hub/internal/model"
	"notify_hub/internal/store/memory"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) FindMatching(ctx context.Context, key model.DedupKey) (model.Notification, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.Notification), args.Bool(1), args.Error(2)
}

func (m *repoMock) Insert(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *repoMock) Touch(ctx context.Context, id string, now time.Time) (model.Notification, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *repoMock) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *repoMock) ListUnread(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *repoMock) SetRead(ctx context.Context, id, userID string, isRead bool, now time.Time) (model.Notification, error) {
	args := m.Called(ctx, id, userID, isRead, now)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *repoMock) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type push struct {
	userID string
	msg    domain.Message
}

type pusherSpy struct {
	mu     sync.Mutex
	pushes []push
}

func (p *pusherSpy) PushToUser(userID string, msg domain.Message) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, push{userID: userID, msg: msg})
	return 1
}

func (p *pusherSpy) all() []push {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]push(nil), p.pushes...)
}

func newService(store *memory.Store, pusher Pusher) *Service {
	return NewService(store, NewCounter(store, zap.NewNop()), pusher, metrics.New(), zap.NewNop())
}

func assignNotice() Notice {
	return Notice{
		UserID:     "user-b",
		SenderID:   "user-a",
		ObjectType: domain.ObjectTypeTask,
		ObjectID:   "task-t",
		Message:    "Alice assigned you to Write report",
		Kind:       domain.EventKindAssign,
	}
}

func TestServiceNotify(t *testing.T) {
	t.Run("creates row and pushes assignment", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		pusher := &pusherSpy{}
		svc := newService(store, pusher)

		created, outcome, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		require.Equal(t, OutcomeCreated, outcome)
		require.NotEmpty(t, created.ID)
		require.False(t, created.IsRead)
		require.Equal(t, domain.ObjectTypeTask, created.ObjectType)
		require.Equal(t, "task-t", created.ObjectID)

		pushes := pusher.all()
		require.Len(t, pushes, 1)
		require.Equal(t, "user-b", pushes[0].userID)
		require.Equal(t, domain.Envelope{Type: "task", Msg: "assign", Count: 1}, pushes[0].msg.Envelope())
		require.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues("created")))
	})

	t.Run("identical notice bumps the existing row", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		svc := newService(store, &pusherSpy{})
		fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		first, _, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		second, outcome, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)

		require.Equal(t, OutcomeBumped, outcome)
		require.Equal(t, first.ID, second.ID)
		require.True(t, second.CreatedAt.Equal(first.CreatedAt))
		require.True(t, second.UpdatedAt.After(first.UpdatedAt))

		count, err := store.CountUnread(context.Background(), "user-b")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("changed message is a new row", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		svc := newService(store, &pusherSpy{})

		_, _, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		changed := assignNotice()
		changed.Message = "Alice assigned you to Write report, due Friday"
		_, outcome, err := svc.Notify(context.Background(), changed)
		require.NoError(t, err)
		require.Equal(t, OutcomeCreated, outcome)

		count, err := store.CountUnread(context.Background(), "user-b")
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("self notification is suppressed", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		pusher := &pusherSpy{}
		svc := newService(store, pusher)

		notice := assignNotice()
		notice.SenderID = notice.UserID
		_, outcome, err := svc.Notify(context.Background(), notice)
		require.NoError(t, err)
		require.Equal(t, OutcomeSkipped, outcome)
		require.Empty(t, pusher.all())

		count, err := store.CountUnread(context.Background(), notice.UserID)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("unassign and invite frames", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		pusher := &pusherSpy{}
		svc := newService(store, pusher)

		unassign := assignNotice()
		unassign.Kind = domain.EventKindUnassign
		unassign.ObjectType = domain.ObjectTypeEvent
		unassign.Message = "Alice removed you from Standup"
		_, _, err := svc.Notify(context.Background(), unassign)
		require.NoError(t, err)

		invite := Notice{
			UserID:     "user-b",
			SenderID:   "user-a",
			ObjectType: domain.ObjectTypeInvitation,
			ObjectID:   "invite-1",
			Message:    "You have an invite to Core from Alice",
			Kind:       domain.EventKindInvite,
		}
		_, _, err = svc.Notify(context.Background(), invite)
		require.NoError(t, err)

		pushes := pusher.all()
		require.Len(t, pushes, 2)
		require.Equal(t, domain.Envelope{Type: "event", Msg: "unassign", Count: 1}, pushes[0].msg.Envelope())
		require.Equal(t, domain.Envelope{Type: "notifications", Count: 2}, pushes[1].msg.Envelope())
	})

	t.Run("invalid notices", func(t *testing.T) {
		repo := &repoMock{}
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), &pusherSpy{}, metrics.New(), zap.NewNop())

		bad := assignNotice()
		bad.ObjectType = "board"
		_, _, err := svc.Notify(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidObjectType)

		bad = assignNotice()
		bad.Kind = domain.EventKindInvite
		_, _, err = svc.Notify(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidEventKind)

		bad = assignNotice()
		bad.ObjectID = ""
		_, _, err = svc.Notify(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrMissingField)

		repo.AssertNotCalled(t, "FindMatching", mock.Anything, mock.Anything)
	})

	t.Run("store error aborts without push", func(t *testing.T) {
		storeErr := errors.New("store failed")
		repo := &repoMock{}
		repo.On("FindMatching", mock.Anything, mock.Anything).Return(model.Notification{}, false, nil).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(model.Notification{}, storeErr).Once()
		pusher := &pusherSpy{}
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), pusher, metrics.New(), zap.NewNop())

		_, _, err := svc.Notify(context.Background(), assignNotice())
		require.ErrorIs(t, err, storeErr)
		require.Empty(t, pusher.all())
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything)
	})

	t.Run("count failure after write still succeeds without push", func(t *testing.T) {
		created := model.Notification{ID: "n-1", UserID: "user-b"}
		repo := &repoMock{}
		repo.On("FindMatching", mock.Anything, mock.Anything).Return(model.Notification{}, false, nil).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		repo.On("CountUnread", mock.Anything, "user-b").Return(0, errors.New("replica lagging")).Once()
		pusher := &pusherSpy{}
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), pusher, metrics.New(), zap.NewNop())

		stored, outcome, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		require.Equal(t, OutcomeCreated, outcome)
		require.Equal(t, "n-1", stored.ID)
		require.Empty(t, pusher.all())
		repo.AssertExpectations(t)
	})

	t.Run("lost insert race falls back to bump", func(t *testing.T) {
		existing := model.Notification{ID: "n-1", UserID: "user-b", UpdatedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
		repo := &repoMock{}
		repo.On("FindMatching", mock.Anything, mock.Anything).Return(model.Notification{}, false, nil).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(model.Notification{}, domain.ErrDuplicateNotification).Once()
		repo.On("FindMatching", mock.Anything, mock.Anything).Return(existing, true, nil).Once()
		repo.On("Touch", mock.Anything, "n-1", mock.Anything).Return(existing, nil).Once()
		repo.On("CountUnread", mock.Anything, "user-b").Return(1, nil).Once()
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), &pusherSpy{}, metrics.New(), zap.NewNop())

		_, outcome, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		require.Equal(t, OutcomeBumped, outcome)
		repo.AssertExpectations(t)
	})

	t.Run("concurrent identical notices keep one row", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		svc := newService(store, &pusherSpy{})

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.Notify(context.Background(), assignNotice())
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		count, err := store.CountUnread(context.Background(), "user-b")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestServiceRespond(t *testing.T) {
	t.Run("marking read decrements and pushes count", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		pusher := &pusherSpy{}
		svc := newService(store, pusher)

		first, _, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)
		other := assignNotice()
		other.ObjectID = "task-u"
		_, _, err = svc.Notify(context.Background(), other)
		require.NoError(t, err)

		updated, err := svc.Respond(context.Background(), "user-b", first.ID, true)
		require.NoError(t, err)
		require.True(t, updated.IsRead)

		pushes := pusher.all()
		require.Equal(t, domain.Envelope{Type: "notifications", Count: 1}, pushes[len(pushes)-1].msg.Envelope())
	})

	t.Run("other users cannot respond", func(t *testing.T) {
		store := memory.New(zap.NewNop())
		svc := newService(store, &pusherSpy{})

		created, _, err := svc.Notify(context.Background(), assignNotice())
		require.NoError(t, err)

		_, err = svc.Respond(context.Background(), "user-a", created.ID, true)
		require.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})
}

func TestServiceListUnread(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expected := []model.Notification{{ID: "n-1", UserID: "user-b"}}
		repo := &repoMock{}
		repo.On("ListUnread", mock.Anything, "user-b", 5, 0).Return(expected, nil).Once()
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), &pusherSpy{}, metrics.New(), zap.NewNop())

		got, err := svc.ListUnread(context.Background(), "user-b", 5, 0)
		require.NoError(t, err)
		require.Equal(t, expected, got)
		repo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		storeErr := errors.New("list failed")
		repo := &repoMock{}
		repo.On("ListUnread", mock.Anything, "user-b", 5, 0).Return([]model.Notification(nil), storeErr).Once()
		svc := NewService(repo, NewCounter(repo, zap.NewNop()), &pusherSpy{}, metrics.New(), zap.NewNop())

		_, err := svc.ListUnread(context.Background(), "user-b", 5, 0)
		require.ErrorIs(t, err, storeErr)
	})
}

func TestCounter(t *testing.T) {
	storeErr := errors.New("count failed")
	repo := &repoMock{}
	repo.On("CountUnread", mock.Anything, "user-b").Return(3, nil).Once()
	repo.On("CountUnread", mock.Anything, "user-b").Return(0, storeErr).Once()
	counter := NewCounter(repo, zap.NewNop())

	count, err := counter.CountUnread(context.Background(), "user-b")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	_, err = counter.CountUnread(context.Background(), "user-b")
	require.ErrorIs(t, err, storeErr)
}
