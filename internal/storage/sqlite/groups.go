package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		g.ID, g.Name, g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		return errs.Unavailable("insert group", err)
	}
	if err := insertMembers(ctx, tx, "group_members", g.ID, g.Members); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, "group_former_members", g.ID, g.FormerMembers); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit group", err)
	}
	return nil
}

// insertMembers writes members into table, which is group_members or
// group_former_members.
func insertMembers(ctx context.Context, tx *sql.Tx, table, groupID string, members []models.Member) error {
	for i, m := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (group_id, position, phone, name) VALUES (?, ?, ?, ?)",
			groupID, i, m.Phone, m.Name,
		)
		if err != nil {
			return errs.Unavailable("insert group member", err)
		}
	}
	return nil
}

// GetGroup retrieves a group by ID, including members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM groups WHERE id = ?",
		id,
	).Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, errs.Unavailable("get group", err)
	}

	members, err := s.loadMembers(ctx, "group_members", []string{id})
	if err != nil {
		return nil, err
	}
	former, err := s.loadMembers(ctx, "group_former_members", []string{id})
	if err != nil {
		return nil, err
	}
	g.Members = members[id]
	g.FormerMembers = former[id]
	return g, nil
}

// UpdateGroupMembers replaces the current and former member lists of a group.
func (s *SQLiteStore) UpdateGroupMembers(ctx context.Context, id string, members, former []models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM groups WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return errs.Unavailable("check group", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}

	for _, stmt := range []string{
		"DELETE FROM group_members WHERE group_id = ?",
		"DELETE FROM group_former_members WHERE group_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return errs.Unavailable("delete group members", err)
		}
	}
	if err := insertMembers(ctx, tx, "group_members", id, members); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, "group_former_members", id, former); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit group members", err)
	}
	return nil
}

// DeleteGroup removes a group with its members, expenses and splits.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	cascade := []string{
		"DELETE FROM group_expense_splits WHERE expense_id IN (SELECT id FROM group_expenses WHERE group_id = ?)",
		"DELETE FROM group_expenses WHERE group_id = ?",
		"DELETE FROM group_members WHERE group_id = ?",
		"DELETE FROM group_former_members WHERE group_id = ?",
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return errs.Unavailable("delete group children", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return errs.Unavailable("delete group", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Unavailable("delete group", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit group delete", err)
	}
	return nil
}

// ListGroupsOf returns the groups user belongs to or created, oldest first.
func (s *SQLiteStore) ListGroupsOf(ctx context.Context, user string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_by, created_at FROM groups
		 WHERE created_by = ? OR id IN (SELECT group_id FROM group_members WHERE phone = ?)
		 ORDER BY created_at, rowid`,
		user, user,
	)
	if err != nil {
		return nil, errs.Unavailable("list groups", err)
	}
	defer rows.Close()

	var groups []models.Group
	var ids []string
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, errs.Unavailable("scan group", err)
		}
		groups = append(groups, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate groups", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	members, err := s.loadMembers(ctx, "group_members", ids)
	if err != nil {
		return nil, err
	}
	former, err := s.loadMembers(ctx, "group_former_members", ids)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Members = members[groups[i].ID]
		groups[i].FormerMembers = former[groups[i].ID]
	}
	return groups, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, table string, groupIDs []string) (map[string][]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, phone, name FROM `+table+`
		 WHERE group_id IN (`+placeholders(len(groupIDs))+`)
		 ORDER BY group_id, position`,
		toArgs(groupIDs)...,
	)
	if err != nil {
		return nil, errs.Unavailable("get group members", err)
	}
	defer rows.Close()

	members := make(map[string][]models.Member, len(groupIDs))
	for rows.Next() {
		var groupID string
		var m models.Member
		if err := rows.Scan(&groupID, &m.Phone, &m.Name); err != nil {
			return nil, errs.Unavailable("scan group member", err)
		}
		members[groupID] = append(members[groupID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate group members", err)
	}
	return members, nil
}

// AddGroupExpense persists an expense and its splits inside an existing group.
func (s *SQLiteStore) AddGroupExpense(ctx context.Context, groupID string, e *models.GroupExpense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = now()
	}
	e.GroupID = groupID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM groups WHERE id = ?", groupID).Scan(&exists); err != nil {
		return errs.Unavailable("check group", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, groupID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_expenses (id, group_id, total, reason, date, paid_by, paid_by_name, split_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, groupID, e.Total.String(), e.Reason, e.Date.UnixNano(), e.PaidBy, e.PaidByName, string(e.SplitMode), e.CreatedAt,
	)
	if err != nil {
		return errs.Unavailable("insert group expense", err)
	}

	for i, sp := range e.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_expense_splits (expense_id, position, phone, name, amount) VALUES (?, ?, ?, ?, ?)",
			e.ID, i, sp.Phone, sp.Name, sp.Amount.String(),
		)
		if err != nil {
			return errs.Unavailable("insert group expense split", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit group expense", err)
	}
	return nil
}

// ListGroupExpenses returns all expenses of a group with their splits, newest first.
func (s *SQLiteStore) ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, total, reason, date, paid_by, paid_by_name, split_mode, created_at
		 FROM group_expenses WHERE group_id = ?
		 ORDER BY date DESC, created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, errs.Unavailable("list group expenses", err)
	}
	defer rows.Close()

	var expenses []models.GroupExpense
	index := make(map[string]int)
	for rows.Next() {
		var e models.GroupExpense
		var date int64
		var mode string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Total, &e.Reason, &date, &e.PaidBy, &e.PaidByName, &mode, &e.CreatedAt); err != nil {
			return nil, errs.Unavailable("scan group expense", err)
		}
		e.Date = fromUnixNano(date)
		e.SplitMode = models.SplitMode(mode)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate group expenses", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	sRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.phone, s.name, s.amount
		 FROM group_expense_splits s JOIN group_expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?
		 ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, errs.Unavailable("list group expense splits", err)
	}
	defer sRows.Close()

	for sRows.Next() {
		var id string
		var sp models.Split
		if err := sRows.Scan(&id, &sp.Phone, &sp.Name, &sp.Amount); err != nil {
			return nil, errs.Unavailable("scan group expense split", err)
		}
		if i, ok := index[id]; ok {
			expenses[i].Splits = append(expenses[i].Splits, sp)
		}
	}
	if err := sRows.Err(); err != nil {
		return nil, errs.Unavailable("iterate group expense splits", err)
	}
	return expenses, nil
}
