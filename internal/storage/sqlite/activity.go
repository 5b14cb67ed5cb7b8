package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// AppendActivity inserts an activity entry and assigns its sequence number.
func (s *SQLiteStore) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixNano()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activity_logs (id, type, actor, target, group_id, record_id, description, amount, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Type), entry.Actor, entry.Target, entry.GroupID, entry.RecordID,
		entry.Description, entry.Amount.String(), entry.Timestamp,
	)
	if err != nil {
		return errs.Unavailable("insert activity", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return errs.Unavailable("insert activity", err)
	}

	for _, phone := range entry.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO activity_participants (seq, phone) VALUES (?, ?)",
			seq, phone,
		)
		if err != nil {
			return errs.Unavailable("insert activity participant", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit activity", err)
	}
	entry.Seq = seq
	return nil
}

// ListActivityFor returns the entries visible to user, newest first.
func (s *SQLiteStore) ListActivityFor(ctx context.Context, user string) ([]models.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, type, actor, target, group_id, record_id, description, amount, timestamp
		 FROM activity_logs
		 WHERE actor = ? OR target = ? OR seq IN (SELECT seq FROM activity_participants WHERE phone = ?)
		 ORDER BY timestamp DESC, seq DESC`,
		user, user, user,
	)
	if err != nil {
		return nil, errs.Unavailable("list activity", err)
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	index := make(map[int64]int)
	for rows.Next() {
		var e models.ActivityEntry
		var typ string
		if err := rows.Scan(&e.Seq, &e.ID, &typ, &e.Actor, &e.Target, &e.GroupID, &e.RecordID, &e.Description, &e.Amount, &e.Timestamp); err != nil {
			return nil, errs.Unavailable("scan activity", err)
		}
		e.Type = models.ActivityType(typ)
		index[e.Seq] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate activity", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	seqs := make([]any, 0, len(entries))
	for _, e := range entries {
		seqs = append(seqs, e.Seq)
	}
	pRows, err := s.db.QueryContext(ctx,
		"SELECT seq, phone FROM activity_participants WHERE seq IN ("+placeholders(len(seqs))+") ORDER BY seq, rowid",
		seqs...,
	)
	if err != nil {
		return nil, errs.Unavailable("list activity participants", err)
	}
	defer pRows.Close()

	for pRows.Next() {
		var seq int64
		var phone string
		if err := pRows.Scan(&seq, &phone); err != nil {
			return nil, errs.Unavailable("scan activity participant", err)
		}
		if i, ok := index[seq]; ok {
			entries[i].Participants = append(entries[i].Participants, phone)
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, errs.Unavailable("iterate activity participants", err)
	}
	return entries, nil
}
