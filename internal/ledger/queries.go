package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// GetDashboardSummary returns the caller's per-friend and per-group balances
// and the totals derived from exactly those figures.
func (s *Service) GetDashboardSummary(ctx context.Context, caller models.Identity) (*DashboardSummary, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var (
		expenses    []models.Expense
		settlements []models.Settlement
		friends     []models.Friend
		groups      []models.Group
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		expenses, err = s.store.ListExpensesInvolving(egCtx, caller.Phone)
		return err
	})
	eg.Go(func() (err error) {
		settlements, err = s.store.ListSettlementsInvolving(egCtx, caller.Phone)
		return err
	})
	eg.Go(func() (err error) {
		friends, err = s.store.ListFriendsOf(egCtx, caller.Phone)
		return err
	})
	eg.Go(func() (err error) {
		groups, err = s.store.ListGroupsOf(egCtx, caller.Phone)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	summary := &DashboardSummary{
		Friends: s.friendBalances(ctx, caller.Phone, friends, expenses, settlements),
		Groups:  make([]GroupBalance, len(groups)),
	}

	diags := make([][]calculator.Diagnostic, len(groups))
	eg, egCtx = errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i := range groups {
		i := i
		eg.Go(func() error {
			balances, d, err := s.groupBalances(egCtx, &groups[i])
			if err != nil {
				return err
			}
			summary.Groups[i] = GroupBalance{
				GroupID: groups[i].ID,
				Name:    groups[i].Name,
				Balance: balances[caller.Phone],
			}
			diags[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load group balances: %w", err)
	}
	for _, d := range diags {
		summary.Diagnostics = append(summary.Diagnostics, d...)
	}
	if len(summary.Diagnostics) > 0 {
		s.logger.Warn("skipped ledger entries while computing dashboard",
			"user", caller.Phone,
			"count", len(summary.Diagnostics),
		)
	}

	pairwise := make([]decimal.Decimal, len(summary.Friends))
	for i, f := range summary.Friends {
		pairwise[i] = f.Balance
	}
	groupBalances := make([]decimal.Decimal, len(summary.Groups))
	for i, g := range summary.Groups {
		groupBalances[i] = g.Balance
	}
	summary.Totals = calculator.AggregateUserTotals(pairwise, groupBalances)
	return summary, nil
}

// friendBalances computes the direct balance against every friend, plus any
// former friend the caller still shares a nonzero balance with.
func (s *Service) friendBalances(ctx context.Context, user string, friends []models.Friend, expenses []models.Expense, settlements []models.Settlement) []FriendBalance {
	out := make([]FriendBalance, 0, len(friends))
	known := make(map[string]bool, len(friends))
	for _, f := range friends {
		known[f.Phone] = true
		out = append(out, FriendBalance{
			Phone:    f.Phone,
			Name:     f.Name,
			Balance:  calculator.PairwiseBalance(expenses, settlements, user, f.Phone),
			IsFriend: true,
		})
	}

	var extra []FriendBalance
	var phones []string
	for _, p := range calculator.Counterparts(expenses, settlements, user) {
		if known[p] {
			continue
		}
		balance := calculator.PairwiseBalance(expenses, settlements, user, p)
		if calculator.Round(balance).IsZero() {
			continue
		}
		extra = append(extra, FriendBalance{Phone: p, Balance: balance})
		phones = append(phones, p)
	}
	if len(extra) > 0 {
		names := s.displayNames(ctx, phones, nil)
		for i := range extra {
			extra[i].Name = names[extra[i].Phone]
		}
		out = append(out, extra...)
	}
	return out
}

// groupBalances loads a group's ledger and folds it over current and former
// members.
func (s *Service) groupBalances(ctx context.Context, g *models.Group) (map[string]decimal.Decimal, []calculator.Diagnostic, error) {
	expenses, settlements, err := s.loadGroupLedger(ctx, g.ID)
	if err != nil {
		return nil, nil, err
	}
	balances, diags := calculator.GroupMemberBalances(g.Participants(), expenses, settlements)
	return balances, diags, nil
}

func (s *Service) loadGroupLedger(ctx context.Context, groupID string) ([]models.GroupExpense, []models.Settlement, error) {
	var (
		expenses    []models.GroupExpense
		settlements []models.Settlement
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		expenses, err = s.store.ListGroupExpenses(egCtx, groupID)
		return err
	})
	eg.Go(func() (err error) {
		settlements, err = s.store.ListSettlementsByGroup(egCtx, groupID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, settlements, nil
}

// GetGroupDetail returns a group's expenses, settlements, member balances,
// raw spend totals and a minimal set of suggested payments.
func (s *Service) GetGroupDetail(ctx context.Context, caller models.Identity, groupID string) (*GroupDetail, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, errs.Validation("group id is required")
	}

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if !g.HasMember(caller.Phone) && g.CreatedBy != caller.Phone {
		return nil, fmt.Errorf("%w: you are not a member of %q", errs.ErrForbidden, g.Name)
	}

	expenses, settlements, err := s.loadGroupLedger(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group ledger: %w", err)
	}

	balances, diags := calculator.GroupMemberBalances(g.Participants(), expenses, settlements)
	if len(diags) > 0 {
		s.logger.Warn("skipped group ledger entries", "group_id", g.ID, "count", len(diags))
	}

	detail := &GroupDetail{
		Group:                *g,
		Expenses:             expenses,
		Settlements:          settlements,
		TotalSpent:           calculator.TotalSpent(expenses),
		YourBalance:          balances[caller.Phone],
		SuggestedSettlements: calculator.SimplifyDebts(balances),
		Diagnostics:          diags,
	}
	for _, m := range g.Members {
		detail.Balances = append(detail.Balances, MemberAmount{Phone: m.Phone, Name: m.Name, Amount: balances[m.Phone]})
	}
	for _, m := range g.FormerMembers {
		if !g.HasMember(m.Phone) {
			detail.FormerBalances = append(detail.FormerBalances, MemberAmount{Phone: m.Phone, Name: m.Name, Amount: balances[m.Phone]})
		}
	}
	detail.Totals = memberTotals(g, expenses)
	return detail, nil
}

// memberTotals lists raw spend for current members first, then for anyone
// else holding a split, sorted by phone.
func memberTotals(g *models.Group, expenses []models.GroupExpense) []MemberAmount {
	totals := calculator.TotalsByMember(expenses)
	out := make([]MemberAmount, 0, len(totals))
	for _, m := range g.Members {
		out = append(out, MemberAmount{Phone: m.Phone, Name: m.Name, Amount: totals[m.Phone]})
		delete(totals, m.Phone)
	}

	names := make(map[string]string)
	for i := range expenses {
		for _, sp := range expenses[i].Splits {
			names[sp.Phone] = sp.Name
		}
	}
	rest := make([]string, 0, len(totals))
	for p := range totals {
		rest = append(rest, p)
	}
	sort.Strings(rest)
	for _, p := range rest {
		out = append(out, MemberAmount{Phone: p, Name: names[p], Amount: totals[p]})
	}
	return out
}

// GetFriendExpenseHistory returns the direct expenses and settlements shared
// with one friend together with the resulting balance.
func (s *Service) GetFriendExpenseHistory(ctx context.Context, caller models.Identity, friendPhone string) (*FriendHistory, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	friend := models.NormalizePhone(friendPhone)
	if friend == "" {
		return nil, errs.Validation("friend phone is required")
	}

	var (
		expenses    []models.Expense
		settlements []models.Settlement
		friends     []models.Friend
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		expenses, err = s.store.ListExpensesInvolvingPair(egCtx, caller.Phone, friend)
		return err
	})
	eg.Go(func() (err error) {
		settlements, err = s.store.ListSettlementsBetween(egCtx, caller.Phone, friend)
		return err
	})
	eg.Go(func() (err error) {
		friends, err = s.store.ListFriendsOf(egCtx, caller.Phone)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load friend history: %w", err)
	}

	direct := make([]models.Settlement, 0, len(settlements))
	for _, st := range settlements {
		if st.GroupID == "" {
			direct = append(direct, st)
		}
	}

	history := &FriendHistory{
		Friend:      models.Friend{Phone: friend},
		Expenses:    expenses,
		Settlements: direct,
		Balance:     calculator.PairwiseBalance(expenses, direct, caller.Phone, friend),
	}
	for _, f := range friends {
		if f.Phone == friend {
			history.Friend.Name = f.Name
		}
	}
	if history.Friend.Name == "" {
		history.Friend.Name = s.displayNames(ctx, []string{friend}, nil)[friend]
	}
	return history, nil
}

// GetOutstandingAmount returns the direct balance between the caller and a
// friend. Positive means the friend owes the caller. Reminder senders use it.
func (s *Service) GetOutstandingAmount(ctx context.Context, caller models.Identity, friendPhone string) (decimal.Decimal, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return decimal.Zero, err
	}
	friend := models.NormalizePhone(friendPhone)
	if friend == "" {
		return decimal.Zero, errs.Validation("friend phone is required")
	}

	var (
		expenses    []models.Expense
		settlements []models.Settlement
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		expenses, err = s.store.ListExpensesInvolvingPair(egCtx, caller.Phone, friend)
		return err
	})
	eg.Go(func() (err error) {
		settlements, err = s.store.ListSettlementsBetween(egCtx, caller.Phone, friend)
		return err
	})
	if err := eg.Wait(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to load balance: %w", err)
	}
	return calculator.PairwiseBalance(expenses, settlements, caller.Phone, friend), nil
}

// ListActivity returns the activity entries visible to the caller, newest
// first. A store outage yields an empty feed rather than an error.
func (s *Service) ListActivity(ctx context.Context, caller models.Identity) ([]models.ActivityEntry, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	entries, err := s.recorder.Feed(ctx, caller.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
