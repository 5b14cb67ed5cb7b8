package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

const settlementColumns = "id, from_phone, to_phone, amount, method, group_id, note, created_at"

// AddSettlement persists a new settlement.
func (s *SQLiteStore) AddSettlement(ctx context.Context, st *models.Settlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = now()
	}

	var note any
	if st.Note != "" {
		note = st.Note
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		st.ID, st.From, st.To, st.Amount.String(), string(st.Method), st.GroupID, note, st.CreatedAt,
	)
	if err != nil {
		return errs.Unavailable("insert settlement", err)
	}
	return nil
}

// ListSettlementsInvolving returns settlements user paid or received, newest first.
func (s *SQLiteStore) ListSettlementsInvolving(ctx context.Context, user string) ([]models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE from_phone = ? OR to_phone = ? ORDER BY created_at DESC, rowid DESC",
		user, user,
	)
}

// ListSettlementsBetween returns settlements between a and b in either direction, newest first.
func (s *SQLiteStore) ListSettlementsBetween(ctx context.Context, a, b string) ([]models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE (from_phone = ? AND to_phone = ?) OR (from_phone = ? AND to_phone = ?)
		 ORDER BY created_at DESC, rowid DESC`,
		a, b, b, a,
	)
}

// ListSettlementsByGroup returns settlements recorded against a group, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY created_at DESC, rowid DESC",
		groupID,
	)
}

func (s *SQLiteStore) querySettlements(ctx context.Context, query string, args ...any) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Unavailable("query settlements", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var st models.Settlement
		var method string
		var note sql.NullString
		if err := rows.Scan(&st.ID, &st.From, &st.To, &st.Amount, &method, &st.GroupID, &note, &st.CreatedAt); err != nil {
			return nil, errs.Unavailable("scan settlement", err)
		}
		st.Method = models.SettlementMethod(method)
		if note.Valid {
			st.Note = note.String
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate settlements", err)
	}
	return settlements, nil
}
