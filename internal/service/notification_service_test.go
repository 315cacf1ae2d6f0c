package service

import (
	"context"
	"testing"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"

	"github.com/stretchr/testify/require"
)

func newNotificationService(env *testEnv) NotificationService {
	return NewNotificationService(repository.NewNotificationRepository(env.db), env.logs, nil)
}

func TestNotificationBroadcastAndReadFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newNotificationService(env)

	admin := env.seedUser(t, "admin@example.com", 0)
	user := env.seedUser(t, "reader@example.com", 12)

	first, err := svc.Create(ctx, admin.ID, CreateNotificationRequest{
		Title:   "Price update",
		Message: "Cylinder prices change on Monday.",
	})
	require.NoError(t, err)
	require.True(t, first.IsActive)
	require.EqualValues(t, 1, env.countLogs(t, model.ActionNotificationCreate))

	second, err := svc.Create(ctx, admin.ID, CreateNotificationRequest{
		Title:   "Holiday hours",
		Message: "No deliveries on the 26th.",
	})
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		require.False(t, n.IsRead)
	}

	require.NoError(t, svc.MarkRead(ctx, first.ID, user.ID))
	// Marking twice is a no-op, not an error.
	require.NoError(t, svc.MarkRead(ctx, first.ID, user.ID))

	list, err = svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	readByID := map[string]bool{}
	for _, n := range list {
		readByID[n.ID.String()] = n.IsRead
	}
	require.True(t, readByID[first.ID.String()])
	require.False(t, readByID[second.ID.String()])

	require.NoError(t, svc.MarkAllRead(ctx, user.ID))
	list, err = svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	for _, n := range list {
		require.True(t, n.IsRead)
	}
}

func TestNotificationDeactivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newNotificationService(env)
	admin := env.seedUser(t, "admin@example.com", 0)

	notification, err := svc.Create(ctx, admin.ID, CreateNotificationRequest{
		Title:   "Old news",
		Message: "This will be retired.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, notification.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	err = svc.MarkRead(ctx, notification.ID, admin.ID)
	require.NoError(t, err) // the row still exists, only hidden
}
