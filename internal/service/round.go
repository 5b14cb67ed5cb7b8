package service

import (
	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/ledger"
)

// Balances are computed at full precision and rounded to cents only here,
// when they leave the service.

func roundSummary(s *ledger.DashboardSummary) ledger.DashboardSummary {
	out := *s
	out.Friends = make([]ledger.FriendBalance, len(s.Friends))
	for i, f := range s.Friends {
		f.Balance = calculator.Round(f.Balance)
		out.Friends[i] = f
	}
	out.Groups = make([]ledger.GroupBalance, len(s.Groups))
	for i, g := range s.Groups {
		g.Balance = calculator.Round(g.Balance)
		out.Groups[i] = g
	}
	out.Totals.OwedToYou = calculator.Round(s.Totals.OwedToYou)
	out.Totals.YouOwe = calculator.Round(s.Totals.YouOwe)
	out.Totals.Net = calculator.Round(s.Totals.Net)
	return out
}

func roundMemberAmounts(in []ledger.MemberAmount) []ledger.MemberAmount {
	out := make([]ledger.MemberAmount, len(in))
	for i, m := range in {
		m.Amount = calculator.Round(m.Amount)
		out[i] = m
	}
	return out
}

func roundDetail(d *ledger.GroupDetail) ledger.GroupDetail {
	out := *d
	out.Balances = roundMemberAmounts(d.Balances)
	if d.FormerBalances != nil {
		out.FormerBalances = roundMemberAmounts(d.FormerBalances)
	}
	out.Totals = roundMemberAmounts(d.Totals)
	out.TotalSpent = calculator.Round(d.TotalSpent)
	out.YourBalance = calculator.Round(d.YourBalance)
	out.SuggestedSettlements = make([]calculator.DebtEdge, len(d.SuggestedSettlements))
	for i, e := range d.SuggestedSettlements {
		e.Amount = calculator.Round(e.Amount)
		out.SuggestedSettlements[i] = e
	}
	return out
}

func roundHistory(h *ledger.FriendHistory) ledger.FriendHistory {
	out := *h
	out.Balance = calculator.Round(h.Balance)
	return out
}
