package repository

import (
	"context"
	"fmt"

	"github.com/moveos/scheduling-service/internal/tenant"
	"gorm.io/gorm"
)

// scoped returns the db handle filtered to the tenant on ctx. Every read and
// predicate against tenant-owned entities goes through here, so an id from
// another tenant matches nothing and surfaces as not-found.
func scoped(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	tenantID, err := tenant.ID(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx).Where("tenant_id = ?", tenantID), nil
}

// stampTenant fills a model's tenant id from ctx before insert. A pre-set id
// that disagrees with the context is a programming error, not a recoverable
// condition.
func stampTenant(ctx context.Context, field *string) error {
	tenantID, err := tenant.ID(ctx)
	if err != nil {
		return err
	}
	if *field == "" {
		*field = tenantID
		return nil
	}
	if *field != tenantID {
		panic(fmt.Sprintf("tenant mismatch: model stamped with %s, context holds %s", *field, tenantID))
	}
	return nil
}
