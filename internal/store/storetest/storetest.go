// Package storetest holds the behavioral suite every NotificationRepository
// implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"notify_hub/internal/domain"
	"notify_hub/internal/model"
	"notify_hub/internal/repository"
)

func sample(userID, objectID, message string) model.Notification {
	return model.Notification{
		UserID:     userID,
		SenderID:   "sender-1",
		ObjectType: domain.ObjectTypeTask,
		ObjectID:   objectID,
		Message:    message,
	}
}

// Run executes the suite against a fresh repository per subtest.
func Run(t *testing.T, newRepo func(t *testing.T) repository.NotificationRepository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("insert and find matching", func(t *testing.T) {
		repo := newRepo(t)
		n := sample("user-1", "task-1", "assigned")
		n.CreatedAt = base

		created, err := repo.Insert(ctx, n)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.False(t, created.IsRead)
		require.True(t, created.UpdatedAt.Equal(base))

		found, ok, err := repo.FindMatching(ctx, n.Key())
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, created.ID, found.ID)
		require.Equal(t, "assigned", found.Message)
		require.True(t, found.CreatedAt.Equal(base))

		other := n.Key()
		other.Message = "assigned, due tomorrow"
		_, ok, err = repo.FindMatching(ctx, other)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("duplicate key rejected", func(t *testing.T) {
		repo := newRepo(t)
		n := sample("user-1", "task-1", "assigned")
		_, err := repo.Insert(ctx, n)
		require.NoError(t, err)

		_, err = repo.Insert(ctx, n)
		require.ErrorIs(t, err, domain.ErrDuplicateNotification)

		count, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("taken id rejected", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.Insert(ctx, sample("user-1", "task-1", "assigned"))
		require.NoError(t, err)

		clash := sample("user-1", "task-2", "assigned")
		clash.ID = first.ID
		_, err = repo.Insert(ctx, clash)
		require.ErrorIs(t, err, domain.ErrDuplicateNotification)

		_, found, err := repo.FindMatching(ctx, clash.Key())
		require.NoError(t, err)
		require.False(t, found)
		kept, found, err := repo.FindMatching(ctx, first.Key())
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "task-1", kept.ObjectID)

		count, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("touch advances updated_at only", func(t *testing.T) {
		repo := newRepo(t)
		n := sample("user-1", "task-1", "assigned")
		n.CreatedAt = base
		created, err := repo.Insert(ctx, n)
		require.NoError(t, err)

		later := base.Add(time.Minute)
		touched, err := repo.Touch(ctx, created.ID, later)
		require.NoError(t, err)
		require.True(t, touched.UpdatedAt.Equal(later))
		require.True(t, touched.CreatedAt.Equal(base))

		_, err = repo.Touch(ctx, "missing", later)
		require.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})

	t.Run("count and list unread", func(t *testing.T) {
		repo := newRepo(t)
		for i, objectID := range []string{"task-1", "task-2", "task-3"} {
			n := sample("user-1", objectID, "assigned")
			n.CreatedAt = base.Add(time.Duration(i) * time.Second)
			_, err := repo.Insert(ctx, n)
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, sample("user-2", "task-1", "assigned"))
		require.NoError(t, err)

		count, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, 3, count)

		page, err := repo.ListUnread(ctx, "user-1", 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "task-3", page[0].ObjectID)
		require.Equal(t, "task-2", page[1].ObjectID)

		page, err = repo.ListUnread(ctx, "user-1", 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, "task-1", page[0].ObjectID)

		empty, err := repo.ListUnread(ctx, "nobody", 5, 0)
		require.NoError(t, err)
		require.Empty(t, empty)
	})

	t.Run("set read decrements count by one", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.Insert(ctx, sample("user-1", "task-1", "assigned"))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, sample("user-1", "task-2", "assigned"))
		require.NoError(t, err)

		before, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)

		read, err := repo.SetRead(ctx, first.ID, "user-1", true, base.Add(time.Hour))
		require.NoError(t, err)
		require.True(t, read.IsRead)
		require.True(t, read.UpdatedAt.Equal(base.Add(time.Hour)))

		after, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, before-1, after)
	})

	t.Run("set read requires the recipient", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Insert(ctx, sample("user-1", "task-1", "assigned"))
		require.NoError(t, err)

		_, err = repo.SetRead(ctx, created.ID, "user-2", true, base)
		require.ErrorIs(t, err, domain.ErrNotificationNotFound)
		_, err = repo.SetRead(ctx, "missing", "user-1", true, base)
		require.ErrorIs(t, err, domain.ErrNotificationNotFound)

		count, err := repo.CountUnread(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("delete read before cutoff", func(t *testing.T) {
		repo := newRepo(t)
		old := sample("user-1", "task-1", "assigned")
		old.CreatedAt = base.Add(-40 * 24 * time.Hour)
		oldRead, err := repo.Insert(ctx, old)
		require.NoError(t, err)
		_, err = repo.SetRead(ctx, oldRead.ID, "user-1", true, base)
		require.NoError(t, err)

		oldUnread := sample("user-1", "task-2", "assigned")
		oldUnread.CreatedAt = base.Add(-40 * 24 * time.Hour)
		_, err = repo.Insert(ctx, oldUnread)
		require.NoError(t, err)

		fresh := sample("user-1", "task-3", "assigned")
		fresh.CreatedAt = base
		freshRead, err := repo.Insert(ctx, fresh)
		require.NoError(t, err)
		_, err = repo.SetRead(ctx, freshRead.ID, "user-1", true, base)
		require.NoError(t, err)

		deleted, err := repo.DeleteReadBefore(ctx, base.Add(-30*24*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(1), deleted)

		// the dedup slot of a swept row is free again
		_, err = repo.Insert(ctx, old)
		require.NoError(t, err)
	})
}
