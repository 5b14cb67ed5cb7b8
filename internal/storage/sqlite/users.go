package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// CreateUser inserts a user, or refreshes the display name of an existing one.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt == 0 {
		user.CreatedAt = now()
	}

	query := `
		INSERT INTO users (phone, name, uid, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET name = excluded.name
	`
	if _, err := s.db.ExecContext(ctx, query, user.Phone, user.Name, user.UID, user.CreatedAt); err != nil {
		return errs.Unavailable("create user", err)
	}
	return nil
}

// GetUser retrieves a user by phone.
func (s *SQLiteStore) GetUser(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT phone, name, uid, created_at FROM users WHERE phone = ?",
		phone,
	).Scan(&user.Phone, &user.Name, &user.UID, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, phone)
	}
	if err != nil {
		return nil, errs.Unavailable("get user", err)
	}
	return user, nil
}

// GetUsersByPhones retrieves multiple users by phone.
// Returns a map of phone to User; phones that are not registered are omitted.
func (s *SQLiteStore) GetUsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User)
	if len(phones) == 0 {
		return users, nil
	}

	query := `SELECT phone, name, uid, created_at FROM users WHERE phone IN (` + placeholders(len(phones)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toArgs(phones)...)
	if err != nil {
		return nil, errs.Unavailable("get users by phones", err)
	}
	defer rows.Close()

	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.Phone, &user.Name, &user.UID, &user.CreatedAt); err != nil {
			return nil, errs.Unavailable("scan user", err)
		}
		users[user.Phone] = user
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate users", err)
	}
	return users, nil
}
