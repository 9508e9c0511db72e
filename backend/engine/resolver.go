package engine

import (
	"errors"
	"time"

	"kitlab/backend/models"
	"kitlab/backend/store"
)

// Verdict is the resolver's answer for a single (user, kit, permission) key.
type Verdict struct {
	Granted   bool
	ExpiresAt *time.Time
}

// Resolver answers entitlement questions from the permission store. An
// absent row is a valid negative verdict, never an error.
type Resolver struct {
	perms store.PermissionStore
}

func NewResolver(perms store.PermissionStore) *Resolver {
	return &Resolver{perms: perms}
}

// Resolve reports whether userID holds permissionType for kitID as of the
// given instant. A row with an expiry grants access only while the expiry is
// strictly in the future.
func (r *Resolver) Resolve(userID, kitID, permissionType string, asOf time.Time) (Verdict, error) {
	if userID == "" {
		return Verdict{}, nil
	}
	p, err := r.perms.GetPermission(userID, kitID, permissionType)
	if errors.Is(err, store.ErrNotFound) {
		return Verdict{}, nil
	}
	if err != nil {
		return Verdict{}, storeErr(err)
	}
	if p.ExpiresAt == nil {
		return Verdict{Granted: true}, nil
	}
	return Verdict{Granted: p.ExpiresAt.After(asOf), ExpiresAt: p.ExpiresAt}, nil
}

// KitSet is the set of kit IDs a user is entitled to.
type KitSet map[string]struct{}

func (s KitSet) Has(kitID string) bool {
	_, ok := s[kitID]
	return ok
}

// ResolveKits is the batched variant used to prefilter listings. Its
// membership is exactly the set of kits for which Resolve would grant.
func (r *Resolver) ResolveKits(userID, permissionType string, asOf time.Time) (KitSet, error) {
	set := make(KitSet)
	if userID == "" {
		return set, nil
	}
	perms, err := r.perms.ListPermissions(userID, permissionType)
	if err != nil {
		return nil, storeErr(err)
	}
	for i := range perms {
		if verdictFor(&perms[i], asOf).Granted {
			set[perms[i].KitID] = struct{}{}
		}
	}
	return set, nil
}

// verdictFor mirrors Resolve but reuses an already-loaded permission row.
func verdictFor(p *models.UserPermission, asOf time.Time) Verdict {
	if p == nil {
		return Verdict{}
	}
	if p.ExpiresAt == nil {
		return Verdict{Granted: true}
	}
	return Verdict{Granted: p.ExpiresAt.After(asOf), ExpiresAt: p.ExpiresAt}
}
