package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const selectUserFields = `id, email, full_name, password_hash, role, created_at, updated_at`

// CreateUser inserts u, assigning its ID and timestamps.
// It returns ErrConflict when the email is already registered.
func (d *DB) CreateUser(ctx context.Context, u *User) error {
	now := d.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, string(u.Role), toUnix(now), toUnix(now),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("creating user %s: %w", u.Email, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id string) (*User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectUserFields+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email address.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectUserFields+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

func scanUser(s scanner) (*User, error) {
	var u User
	var role string
	var created, updated int64
	err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &role, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	u.CreatedAt = fromUnix(created)
	u.UpdatedAt = fromUnix(updated)
	return &u, nil
}
