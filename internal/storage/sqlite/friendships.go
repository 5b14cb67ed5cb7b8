package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// AddFriendship inserts a friendship keyed by the unordered pair.
// The insert is a single statement, so concurrent adds of the same pair
// produce exactly one row and the loser gets ErrDuplicateFriendship.
func (s *SQLiteStore) AddFriendship(ctx context.Context, f *models.Friendship) error {
	f.ID = models.FriendshipKey(f.UserA, f.UserB)
	if f.CreatedAt == 0 {
		f.CreatedAt = now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (id, user_a, user_b, name_a, name_b, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		f.ID, f.UserA, f.UserB, f.Metadata[f.UserA], f.Metadata[f.UserB], f.CreatedAt,
	)
	if err != nil {
		return errs.Unavailable("insert friendship", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Unavailable("insert friendship", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s and %s are already friends", errs.ErrDuplicateFriendship, f.UserA, f.UserB)
	}
	return nil
}

// RemoveFriendship deletes the friendship between a and b in either stored order.
func (s *SQLiteStore) RemoveFriendship(ctx context.Context, a, b string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM friendships WHERE id = ?", models.FriendshipKey(a, b))
	if err != nil {
		return errs.Unavailable("delete friendship", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Unavailable("delete friendship", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no friendship between %s and %s", errs.ErrNotFound, a, b)
	}
	return nil
}

// ListFriendsOf returns the counterpart of every friendship involving user,
// with the name captured when the friendship was created.
func (s *SQLiteStore) ListFriendsOf(ctx context.Context, user string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_b, name_b FROM friendships WHERE user_a = ?
		 UNION ALL
		 SELECT user_a, name_a FROM friendships WHERE user_b = ?
		 ORDER BY 2, 1`,
		user, user,
	)
	if err != nil {
		return nil, errs.Unavailable("list friends", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.Phone, &f.Name); err != nil {
			return nil, errs.Unavailable("scan friend", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate friends", err)
	}
	return friends, nil
}
