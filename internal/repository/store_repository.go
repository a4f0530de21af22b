package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
)

const storeSelectColumns = `id, slug, name, subdomain, custom_domain, organization_id, deleted_at, created_at, updated_at`

// PostgresStoreRepository is the tenant directory backed by Postgres. Lookup
// and FindBySlug only ever return live stores; soft-deleted rows never
// resolve.
type PostgresStoreRepository struct {
	db *sql.DB
}

func NewPostgresStoreRepository(db *sql.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{db: db}
}

func (r *PostgresStoreRepository) scanStore(row *sql.Row) (*domain.Store, error) {
	var s domain.Store
	var subdomain, customDomain sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Name,
		&subdomain,
		&customDomain,
		&s.OrganizationID,
		&deletedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Subdomain = fromNullString(subdomain)
	s.CustomDomain = fromNullString(customDomain)
	s.DeletedAt = fromNullTime(deletedAt)
	return &s, nil
}

// Lookup matches on subdomain equality (when a label is given) or exact
// custom-domain equality, restricted to non-deleted stores. At most one row
// is returned; uniqueness of subdomain and custom_domain is a schema
// constraint, LIMIT 1 is first-match-wins on top of it.
func (r *PostgresStoreRepository) Lookup(ctx context.Context, subdomain, host string) (*domain.Store, error) {
	query := `
		SELECT ` + storeSelectColumns + `
		FROM stores
		WHERE deleted_at IS NULL
		  AND (($1 <> '' AND subdomain = $1) OR custom_domain = $2)
		LIMIT 1`

	return r.scanStore(r.db.QueryRowContext(ctx, query, subdomain, host))
}

func (r *PostgresStoreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	query := `SELECT ` + storeSelectColumns + ` FROM stores WHERE slug = $1 AND deleted_at IS NULL`
	return r.scanStore(r.db.QueryRowContext(ctx, query, slug))
}

var _ domain.StoreRepository = (*PostgresStoreRepository)(nil)
