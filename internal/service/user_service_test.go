package service

import (
	"context"
	"testing"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"github.com/stretchr/testify/require"
)

func newAdminServices(env *testEnv) (UserService, AgencyService) {
	users := NewUserService(env.users, env.agencies, env.logs, env.txManager)
	agencies := NewAgencyService(env.agencies, env.logs)
	return users, agencies
}

func TestUserToggleStatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users, _ := newAdminServices(env)

	admin := env.seedUser(t, "admin@example.com", 0)
	target := env.seedUser(t, "target@example.com", 12)

	toggled, err := users.ToggleStatus(ctx, target.ID, admin.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)
	require.EqualValues(t, 1, env.countLogs(t, model.ActionUserToggleStatus))

	toggled, err = users.ToggleStatus(ctx, target.ID, admin.ID)
	require.NoError(t, err)
	require.True(t, toggled.IsActive)

	require.NoError(t, users.Delete(ctx, target.ID, admin.ID))
	_, err = users.Get(ctx, target.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.EqualValues(t, 1, env.countLogs(t, model.ActionUserDelete))
}

func TestUserResetBarrels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users, _ := newAdminServices(env)

	admin := env.seedUser(t, "admin@example.com", 0)
	target := env.seedUser(t, "target@example.com", 2)

	reset, err := users.ResetBarrels(ctx, target.ID, admin.ID, 12)
	require.NoError(t, err)
	require.Equal(t, 12, reset.BarrelsRemaining)
	require.EqualValues(t, 1, env.countLogs(t, model.ActionUserBarrelAdjust))

	// A negative count falls back to the annual default.
	reset, err = users.ResetBarrels(ctx, target.ID, admin.ID, -1)
	require.NoError(t, err)
	require.Equal(t, model.DefaultAnnualBarrels, reset.BarrelsRemaining)
}

func TestUserUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users, _ := newAdminServices(env)

	user := env.seedUser(t, "profile@example.com", 12)
	agency := env.seedAgency(t, "vendor@example.com", true)

	updated, err := users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Name:            "Renamed",
		Phone:           "1234567890",
		DefaultVendorID: agency.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "1234567890", updated.Phone)
	require.NotNil(t, updated.DefaultVendorID)
	require.Equal(t, agency.ID, *updated.DefaultVendorID)

	_, err = users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		DefaultVendorID: "00000000-0000-0000-0000-000000000001",
	})
	require.ErrorIs(t, err, ErrAgencyNotFound)
}

func TestAgencyVerifyAndDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, agencies := newAdminServices(env)

	admin := env.seedUser(t, "admin@example.com", 0)
	pending := env.seedAgency(t, "pending@example.com", false)
	env.seedAgency(t, "listed@example.com", true)

	// Unverified agencies never show in the public directory.
	listed, total, err := agencies.Directory(ctx, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, listed, 1)
	require.Equal(t, "listed@example.com", listed[0].Email)

	verified, err := agencies.Verify(ctx, pending.ID, admin.ID)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)
	require.EqualValues(t, 1, env.countLogs(t, model.ActionAgencyVerify))

	_, total, err = agencies.Directory(ctx, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// Deactivating removes it from the directory again.
	toggled, err := agencies.ToggleStatus(ctx, verified.ID, admin.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	_, total, err = agencies.Directory(ctx, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}
