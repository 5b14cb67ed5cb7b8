package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/activity"
	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// normalizePhones canonicalizes and deduplicates phones, keeping order.
func normalizePhones(phones []string) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		p = models.NormalizePhone(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RecordDirectExpense validates and persists a direct expense shared equally
// by its participants. It does not touch friendships.
func (s *Service) RecordDirectExpense(ctx context.Context, caller models.Identity, in DirectExpenseInput) (*models.Expense, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	in.Category = models.SanitizeText(in.Category)
	in.Reason = models.SanitizeText(in.Reason)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	payer := models.NormalizePhone(in.Payer)
	participants := normalizePhones(in.Participants)
	if len(participants) == 0 {
		return nil, errs.Validation("participants must not be empty")
	}
	if !slices.Contains(participants, payer) {
		return nil, errs.Validation("payer %s must be one of the participants", models.FormatPhone(payer))
	}
	if !slices.Contains(participants, caller.Phone) {
		return nil, fmt.Errorf("%w: you can only record expenses you take part in", errs.ErrForbidden)
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	e := &models.Expense{
		PaidBy:       payer,
		Participants: participants,
		Amount:       in.Amount,
		Category:     in.Category,
		Reason:       in.Reason,
		Date:         date.UTC(),
	}
	if err := s.store.AddExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	s.logger.Info("expense recorded",
		"expense_id", e.ID,
		"paid_by", e.PaidBy,
		"participants", len(e.Participants),
		"amount", e.Amount.String(),
	)
	names := s.displayNames(ctx, participants, map[string]string{caller.Phone: caller.Name})
	s.record(ctx, activity.Expense(caller.Member(), e, names))
	return e, nil
}

// DeleteExpense removes a direct expense. Only participants may delete it.
func (s *Service) DeleteExpense(ctx context.Context, caller models.Identity, expenseID string) error {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return err
	}
	if expenseID == "" {
		return errs.Validation("expense id is required")
	}

	e, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to get expense: %w", err)
	}
	if !e.Involves(caller.Phone) {
		return fmt.Errorf("%w: you are not a participant of expense %s", errs.ErrForbidden, expenseID)
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.logger.Info("expense deleted", "expense_id", expenseID, "user", caller.Phone)
	s.record(ctx, activity.ExpenseDeleted(caller.Member(), e))
	return nil
}

// RecordGroupExpense validates and persists an expense inside a group.
//
// Equal mode divides the amount over the selected members (every member when
// none are selected) to the cent, with leftover cents going to the first
// members. Custom mode takes the given splits, which must sum to the amount
// within calculator.SplitTolerance. Split amounts are stored explicitly and
// never recomputed.
func (s *Service) RecordGroupExpense(ctx context.Context, caller models.Identity, in GroupExpenseInput) (*models.GroupExpense, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	in.Reason = models.SanitizeText(in.Reason)
	if in.SplitMode == "" {
		in.SplitMode = models.SplitEqual
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	g, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if !g.HasMember(caller.Phone) {
		return nil, fmt.Errorf("%w: you are not a member of %q", errs.ErrForbidden, g.Name)
	}

	payer := models.NormalizePhone(in.Payer)
	if !g.HasMember(payer) {
		return nil, errs.Validation("payer %s is not a member of %q", models.FormatPhone(payer), g.Name)
	}

	var splits []models.Split
	switch in.SplitMode {
	case models.SplitEqual:
		splits, err = equalSplits(g, in)
	case models.SplitCustom:
		splits, err = customSplits(g, in)
	}
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	e := &models.GroupExpense{
		Total:      in.Amount,
		Reason:     in.Reason,
		Date:       date.UTC(),
		PaidBy:     payer,
		PaidByName: g.MemberName(payer),
		SplitMode:  in.SplitMode,
		Splits:     splits,
	}
	if err := s.store.AddGroupExpense(ctx, g.ID, e); err != nil {
		return nil, fmt.Errorf("failed to record group expense: %w", err)
	}

	s.logger.Info("group expense recorded",
		"group_id", g.ID,
		"expense_id", e.ID,
		"split_mode", e.SplitMode,
		"splits", len(e.Splits),
		"total", e.Total.String(),
	)
	s.record(ctx, activity.GroupExpense(caller.Member(), g, e))
	return e, nil
}

func equalSplits(g *models.Group, in GroupExpenseInput) ([]models.Split, error) {
	selected := normalizePhones(in.SelectedMembers)
	if len(selected) == 0 {
		selected = g.MemberPhones()
	}
	for _, p := range selected {
		if !g.HasMember(p) {
			return nil, errs.Validation("%s is not a member of %q", models.FormatPhone(p), g.Name)
		}
	}

	shares, err := calculator.EqualSplit(in.Amount, len(selected))
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	splits := make([]models.Split, len(selected))
	for i, p := range selected {
		splits[i] = models.Split{Phone: p, Name: g.MemberName(p), Amount: shares[i]}
	}
	return splits, nil
}

func customSplits(g *models.Group, in GroupExpenseInput) ([]models.Split, error) {
	if len(in.CustomSplits) == 0 {
		return nil, errs.Validation("custom splits are required for custom split mode")
	}

	splits := make([]models.Split, 0, len(in.CustomSplits))
	amounts := make([]decimal.Decimal, 0, len(in.CustomSplits))
	seen := make(map[string]bool)
	for _, cs := range in.CustomSplits {
		p := models.NormalizePhone(cs.Phone)
		if !g.HasMember(p) {
			return nil, errs.Validation("%s is not a member of %q", models.FormatPhone(cs.Phone), g.Name)
		}
		if seen[p] {
			return nil, errs.Validation("%s appears more than once in the splits", models.FormatPhone(p))
		}
		seen[p] = true
		splits = append(splits, models.Split{Phone: p, Name: g.MemberName(p), Amount: cs.Amount})
		amounts = append(amounts, cs.Amount)
	}

	if !calculator.SplitsMatch(in.Amount, amounts) {
		return nil, fmt.Errorf("%w: splits add up to %s but the expense is %s",
			errs.ErrSplitMismatch,
			activity.FormatAmount(calculator.Sum(amounts)),
			activity.FormatAmount(in.Amount),
		)
	}
	return splits, nil
}
