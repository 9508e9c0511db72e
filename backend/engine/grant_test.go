package engine_test

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"kitlab/backend/engine"
	"kitlab/backend/models"
	"kitlab/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantWritesEntitlementAndPurchase(t *testing.T) {
	eng, _, db := newTestEngine(t)

	result, err := eng.Granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
		nil, 49.90, models.PaymentMethodPurchase)
	require.NoError(t, err)
	require.NoError(t, result.AuditErr)
	require.NotNil(t, result.Purchase)
	assert.Equal(t, models.PaymentStatusCompleted, result.Purchase.PaymentStatus)
	assert.Equal(t, 49.90, result.Purchase.Amount)

	verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.True(t, verdict.Granted)

	var purchases int64
	db.Model(&models.Purchase{}).Count(&purchases)
	assert.EqualValues(t, 1, purchases)
}

func TestGrantIsIdempotentOnEntitlement(t *testing.T) {
	eng, _, db := newTestEngine(t)

	for i := 0; i < 2; i++ {
		_, err := eng.Granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
			nil, 49.90, models.PaymentMethodPurchase)
		require.NoError(t, err)
	}

	// One entitlement row, two purchase rows: purchases are a log,
	// entitlements are current state.
	var perms, purchases int64
	db.Model(&models.UserPermission{}).Count(&perms)
	db.Model(&models.Purchase{}).Count(&purchases)
	assert.EqualValues(t, 1, perms)
	assert.EqualValues(t, 2, purchases)
}

func TestRegrantOverwritesExpiry(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	past := time.Now().Add(-time.Hour)
	_, err := eng.Granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
		&past, 0, models.PaymentMethodAdminGrant)
	require.NoError(t, err)

	verdict, err := eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.False(t, verdict.Granted)

	_, err = eng.Granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
		nil, 0, models.PaymentMethodAdminGrant)
	require.NoError(t, err)

	verdict, err = eng.Resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.True(t, verdict.Granted)
}

// failingPurchases simulates an audit store outage.
type failingPurchases struct{}

func (failingPurchases) InsertPurchase(*models.Purchase) error {
	return errors.New("purchases table on fire")
}

func (failingPurchases) ListPurchases(string) ([]models.Purchase, error) {
	return nil, errors.New("purchases table on fire")
}

func TestGrantSurvivesAuditFailure(t *testing.T) {
	_, s, _ := newTestEngine(t)

	granter := engine.NewGranter(s, failingPurchases{}, nil, log.New(io.Discard, "", 0))
	result, err := granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
		nil, 49.90, models.PaymentMethodPurchase)

	// The audit write failed but the grant stands.
	require.NoError(t, err)
	require.Error(t, result.AuditErr)
	assert.True(t, errors.Is(result.AuditErr, engine.ErrConflictIgnored))
	assert.Nil(t, result.Purchase)

	resolver := engine.NewResolver(s)
	verdict, err := resolver.Resolve("user-1", "kit-1", models.PermissionCourseAccess, time.Now())
	require.NoError(t, err)
	assert.True(t, verdict.Granted)
}

func TestGrantFailsWhenEntitlementWriteFails(t *testing.T) {
	granter := engine.NewGranter(failingPermissions{}, failingPurchases{}, nil, log.New(io.Discard, "", 0))

	_, err := granter.Grant("user-1", "kit-1", models.PermissionCourseAccess,
		nil, 49.90, models.PaymentMethodPurchase)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrStoreUnavailable))
}

type failingPermissions struct{}

func (failingPermissions) GetPermission(string, string, string) (*models.UserPermission, error) {
	return nil, store.ErrUnavailable
}

func (failingPermissions) ListPermissions(string, string) ([]models.UserPermission, error) {
	return nil, store.ErrUnavailable
}

func (failingPermissions) UpsertPermission(*models.UserPermission) error {
	return store.ErrUnavailable
}
