package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"mallops-console/internal/directory/domain"
	profiledomain "mallops-console/internal/profile/domain"
)

// Postgres is a Repository backed by the directory tables created by
// cmd/migrate. It exists so the in-memory table can be swapped for a real
// directory without touching callers.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a directory repository that uses the given db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// GetAccountByUsername returns the account for username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *Postgres) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const q = `
		SELECT id, username, full_name, role, mall_id, shop_id, active, password_hash
		FROM accounts
		WHERE LOWER(username) = LOWER($1)`
	row := r.db.QueryRowContext(ctx, q, strings.TrimSpace(username))

	var (
		a      domain.Account
		role   string
		mallID sql.NullInt64
		shopID sql.NullInt64
	)
	err := row.Scan(&a.Profile.ID, &a.Profile.Username, &a.Profile.FullName,
		&role, &mallID, &shopID, &a.Profile.Active, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	parsed, ok := profiledomain.ParseRole(role)
	if !ok {
		// An unknown role in the directory fails closed: the record is
		// treated as absent rather than guessed at.
		return nil, nil
	}
	a.Profile.Role = parsed
	a.Profile.MallID = nullInt64ToPtr(mallID)
	a.Profile.ShopID = nullInt64ToPtr(shopID)
	return &a, nil
}

// ListMalls returns all malls ordered by ID.
func (r *Postgres) ListMalls(ctx context.Context) ([]domain.Mall, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM malls ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Mall
	for rows.Next() {
		var m domain.Mall
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListShops returns all shops ordered by ID.
func (r *Postgres) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, mall_id, name FROM shops ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Shop
	for rows.Next() {
		var s domain.Shop
		if err := rows.Scan(&s.ID, &s.MallID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateAccount inserts the account.
func (r *Postgres) CreateAccount(ctx context.Context, a *domain.Account) error {
	const q = `
		INSERT INTO accounts (id, username, full_name, role, mall_id, shop_id, active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		a.Profile.ID, a.Profile.Username, a.Profile.FullName, string(a.Profile.Role),
		ptrToNullInt64(a.Profile.MallID), ptrToNullInt64(a.Profile.ShopID),
		a.Profile.Active, a.PasswordHash)
	return err
}

// CreateMall inserts the mall.
func (r *Postgres) CreateMall(ctx context.Context, m *domain.Mall) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO malls (id, name) VALUES ($1, $2)`, m.ID, m.Name)
	return err
}

// CreateShop inserts the shop.
func (r *Postgres) CreateShop(ctx context.Context, s *domain.Shop) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO shops (id, mall_id, name) VALUES ($1, $2, $3)`, s.ID, s.MallID, s.Name)
	return err
}

func nullInt64ToPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func ptrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
