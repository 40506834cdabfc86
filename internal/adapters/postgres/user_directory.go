package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	apperrors "github.com/Hissaria17/alcrm-sub001/internal/errors"
)

// UserDirectory resolves the authoritative role claim from the users
// table. The request guard calls RoleOf on every protected request, so
// role changes take effect without re-login.
type UserDirectory struct {
	DB *sql.DB
}

// NewUserDirectory creates a directory backed by db.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{DB: db}
}

// RoleOf returns the stored role for userID. A missing row maps to a
// not-found error; an unknown role value maps to unauthenticated.
// Callers treat every error as "no role" (fail closed).
func (d *UserDirectory) RoleOf(ctx context.Context, userID string) (domainauth.Role, error) {
	var raw string
	err := WithPgxConn(ctx, d.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT role FROM users WHERE user_id = $1`,
			userID,
		).Scan(&raw)
	})
	if err != nil {
		return domainauth.RoleNone, apperrors.MapDBError(err)
	}

	role, ok := domainauth.ParseRole(raw)
	if !ok {
		return domainauth.RoleNone, apperrors.Unauthenticated(
			fmt.Sprintf("user %s has unrecognized role %q", userID, raw))
	}
	return role, nil
}

// Provision upserts the user row at login time. The role is only
// written on first sight; an existing row keeps its stored role so a
// directory-side demotion is never undone by a login.
func (d *UserDirectory) Provision(ctx context.Context, userID, email string, role domainauth.Role) error {
	if !role.Valid() {
		return apperrors.Validation(fmt.Sprintf("cannot provision role %q", role))
	}

	err := WithPgxConn(ctx, d.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx,
			`INSERT INTO users (user_id, email, role)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email`,
			userID, email, string(role),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("provision user %s: %w", userID, apperrors.MapDBError(err))
	}
	return nil
}
