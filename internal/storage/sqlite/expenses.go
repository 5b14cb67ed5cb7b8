package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

const expenseColumns = "id, paid_by, amount, category, reason, date, created_at"

// AddExpense persists a direct expense and its participants.
func (s *SQLiteStore) AddExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.PaidBy, e.Amount.String(), e.Category, e.Reason, e.Date.UnixNano(), e.CreatedAt,
	)
	if err != nil {
		return errs.Unavailable("insert expense", err)
	}

	for i, phone := range e.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, position, phone) VALUES (?, ?, ?)",
			e.ID, i, phone,
		)
		if err != nil {
			return errs.Unavailable("insert expense participant", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit expense", err)
	}
	return nil
}

// GetExpense retrieves a direct expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	list, err := s.queryExpenses(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
	}
	return &list[0], nil
}

// DeleteExpense removes a direct expense. Participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", id); err != nil {
		return errs.Unavailable("delete expense participants", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return errs.Unavailable("delete expense", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Unavailable("delete expense", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return errs.Unavailable("commit expense delete", err)
	}
	return nil
}

// ListExpensesInvolving returns every direct expense user participates in, newest first.
func (s *SQLiteStore) ListExpensesInvolving(ctx context.Context, user string) ([]models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE id IN (SELECT expense_id FROM expense_participants WHERE phone = ?)
		 ORDER BY date DESC, created_at DESC, rowid DESC`,
		user,
	)
}

// ListExpensesInvolvingPair returns every direct expense both a and b participate in, newest first.
func (s *SQLiteStore) ListExpensesInvolvingPair(ctx context.Context, a, b string) ([]models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE id IN (SELECT expense_id FROM expense_participants WHERE phone = ?)
		   AND id IN (SELECT expense_id FROM expense_participants WHERE phone = ?)
		 ORDER BY date DESC, created_at DESC, rowid DESC`,
		a, b,
	)
}

// queryExpenses runs an expense query and attaches participants in one extra round trip.
func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Unavailable("query expenses", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var date int64
		if err := rows.Scan(&e.ID, &e.PaidBy, &e.Amount, &e.Category, &e.Reason, &date, &e.CreatedAt); err != nil {
			return nil, errs.Unavailable("scan expense", err)
		}
		e.Date = fromUnixNano(date)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable("iterate expenses", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, len(expenses))
	index := make(map[string]int, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		index[e.ID] = i
	}

	pRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, phone FROM expense_participants
		 WHERE expense_id IN (`+placeholders(len(ids))+`)
		 ORDER BY expense_id, position`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, errs.Unavailable("query expense participants", err)
	}
	defer pRows.Close()

	for pRows.Next() {
		var id, phone string
		if err := pRows.Scan(&id, &phone); err != nil {
			return nil, errs.Unavailable("scan expense participant", err)
		}
		i := index[id]
		expenses[i].Participants = append(expenses[i].Participants, phone)
	}
	if err := pRows.Err(); err != nil {
		return nil, errs.Unavailable("iterate expense participants", err)
	}
	return expenses, nil
}
