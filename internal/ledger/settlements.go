package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitify/internal/activity"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// RecordSettlement records a payment between two users. It never modifies
// expense records; the payment is netted when balances are read. Paying more
// than is owed is allowed and flips the balance.
func (s *Service) RecordSettlement(ctx context.Context, caller models.Identity, in SettlementInput) (*models.Settlement, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	in.From = models.NormalizePhone(in.From)
	in.To = models.NormalizePhone(in.To)
	in.Note = models.SanitizeText(in.Note)
	if in.Method == "" {
		in.Method = models.MethodOther
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.From == in.To {
		return nil, errs.Validation("cannot settle with yourself")
	}
	if caller.Phone != in.From && caller.Phone != in.To {
		return nil, fmt.Errorf("%w: you can only record settlements you take part in", errs.ErrForbidden)
	}

	from := models.Member{Phone: in.From}
	to := models.Member{Phone: in.To}
	groupName := ""
	if in.GroupID != "" {
		g, err := s.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to get group: %w", err)
		}
		if !g.HasMember(in.From) || !g.HasMember(in.To) {
			return nil, errs.Validation("both parties must be members of %q", g.Name)
		}
		groupName = g.Name
		from.Name = g.MemberName(in.From)
		to.Name = g.MemberName(in.To)
	} else {
		names := s.displayNames(ctx, []string{in.From, in.To}, map[string]string{caller.Phone: caller.Name})
		from.Name = names[in.From]
		to.Name = names[in.To]
	}

	st := &models.Settlement{
		From:    in.From,
		To:      in.To,
		Amount:  in.Amount,
		Method:  in.Method,
		GroupID: in.GroupID,
		Note:    in.Note,
	}
	if err := s.store.AddSettlement(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	s.logger.Info("settlement recorded",
		"settlement_id", st.ID,
		"from", st.From,
		"to", st.To,
		"group_id", st.GroupID,
		"amount", st.Amount.String(),
	)
	s.record(ctx, activity.Settlement(caller.Member(), from, to, st, groupName))
	return st, nil
}
