package engine

import (
	"fmt"
	"log"
	"time"

	"kitlab/backend/models"
	"kitlab/backend/store"
)

// Notifier delivers a confirmation after a successful grant. Delivery is
// fire-and-forget: an error is logged and never fails the grant.
type Notifier interface {
	PurchaseConfirmation(userID, kitID string, purchase *models.Purchase) error
}

// GrantResult reports what a grant actually wrote. AuditErr is non-nil when
// the best-effort purchase insert failed (wrapped ErrConflictIgnored); the
// grant itself still succeeded in that case.
type GrantResult struct {
	Permission models.UserPermission
	Purchase   *models.Purchase
	AuditErr   error
}

// Granter performs the two-step grant sequence. The entitlement upsert is
// authoritative; the purchase append is an audit log. The two writes are not
// atomic: a crash in between leaves an entitlement without an audit row,
// never the reverse.
type Granter struct {
	perms     store.PermissionStore
	purchases store.PurchaseStore
	notifier  Notifier
	log       *log.Logger
}

func NewGranter(perms store.PermissionStore, purchases store.PurchaseStore, notifier Notifier, logger *log.Logger) *Granter {
	return &Granter{perms: perms, purchases: purchases, notifier: notifier, log: logger}
}

// Grant upserts the entitlement for (userID, kitID, permissionType), then
// appends a purchase record. Regranting the same key overwrites the
// entitlement's expiry and appends a fresh purchase row: purchases are a
// log, entitlements are current state.
func (g *Granter) Grant(userID, kitID, permissionType string, expiresAt *time.Time, amount float64, paymentMethod string) (GrantResult, error) {
	perm := models.UserPermission{
		UserID:         userID,
		KitID:          kitID,
		PermissionType: permissionType,
		ExpiresAt:      expiresAt,
	}
	if err := g.perms.UpsertPermission(&perm); err != nil {
		return GrantResult{}, storeErr(err)
	}

	result := GrantResult{Permission: perm}

	purchase := &models.Purchase{
		UserID:        userID,
		KitID:         kitID,
		Amount:        amount,
		Currency:      "USD",
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentStatusCompleted,
		CompletedAt:   time.Now().UTC(),
	}
	if err := g.purchases.InsertPurchase(purchase); err != nil {
		// The user already holds the entitlement; an audit failure must not
		// take it back.
		g.log.Printf("WARN: purchase audit write failed user=%s kit=%s: %v", userID, kitID, err)
		result.AuditErr = fmt.Errorf("%w: %v", ErrConflictIgnored, err)
		return result, nil
	}
	result.Purchase = purchase

	if g.notifier != nil {
		if err := g.notifier.PurchaseConfirmation(userID, kitID, purchase); err != nil {
			g.log.Printf("WARN: purchase confirmation failed user=%s kit=%s: %v", userID, kitID, err)
		}
	}
	return result, nil
}
