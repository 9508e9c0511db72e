package engine_test

import (
	"testing"
	"time"

	"kitlab/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAbsentIsNotAnError(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.False(t, verdict.Granted)
	assert.Nil(t, verdict.ExpiresAt)
}

func TestResolveWithoutExpiry(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID:         "user-1",
		KitID:          "kit-1",
		PermissionType: models.PermissionCourseAccess,
	}))

	verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.True(t, verdict.Granted)
	assert.Nil(t, verdict.ExpiresAt)
}

func TestResolveExpiry(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	now := time.Now()
	tests := []struct {
		name      string
		expiresAt time.Time
		granted   bool
	}{
		{"future expiry grants", now.Add(24 * time.Hour), true},
		{"past expiry is treated as absent", now.Add(-24 * time.Hour), false},
		{"expiry equal to asOf does not grant", now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expires := tt.expiresAt
			require.NoError(t, s.UpsertPermission(&models.UserPermission{
				UserID:         "user-1",
				KitID:          "kit-1",
				PermissionType: models.PermissionCourseAccess,
				ExpiresAt:      &expires,
			}))

			verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, now)
			require.NoError(t, err)
			assert.Equal(t, tt.granted, verdict.Granted)
			require.NotNil(t, verdict.ExpiresAt)
		})
	}
}

func TestResolveDistinguishesPermissionKinds(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID:         "user-1",
		KitID:          "kit-1",
		PermissionType: models.PermissionCustomCourseCreation,
	}))

	verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.False(t, verdict.Granted)
}

func TestResolveKitsMatchesIndividualResolve(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	for _, p := range []models.UserPermission{
		{UserID: "user-1", KitID: "kit-open", PermissionType: models.PermissionCourseAccess},
		{UserID: "user-1", KitID: "kit-future", PermissionType: models.PermissionCourseAccess, ExpiresAt: &future},
		{UserID: "user-1", KitID: "kit-expired", PermissionType: models.PermissionCourseAccess, ExpiresAt: &past},
		{UserID: "user-1", KitID: "kit-other-perm", PermissionType: models.PermissionCustomCourseCreation},
		{UserID: "user-2", KitID: "kit-open", PermissionType: models.PermissionCourseAccess},
	} {
		perm := p
		require.NoError(t, s.UpsertPermission(&perm))
	}

	set, err := eng.Resolver.ResolveKits("user-1", models.PermissionCourseAccess, now)
	require.NoError(t, err)

	for _, kitID := range []string{"kit-open", "kit-future", "kit-expired", "kit-other-perm", "kit-missing"} {
		verdict, err := eng.Resolver.Resolve("user-1", kitID, models.PermissionCourseAccess, now)
		require.NoError(t, err)
		assert.Equal(t, verdict.Granted, set.Has(kitID), "membership mismatch for %s", kitID)
	}
	assert.Len(t, set, 2)
}

func TestResolveKitsAnonymous(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	set, err := eng.Resolver.ResolveKits("", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.Empty(t, set)
}
