package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/mmynk/splitify/internal/activity"
	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// CreateGroup creates a named group. Members are deduplicated by phone and
// the creator is always included.
func (s *Service) CreateGroup(ctx context.Context, caller models.Identity, name string, members []models.Member) (*models.Group, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	name = models.SanitizeText(name)
	if name == "" {
		return nil, errs.Validation("group name is required")
	}

	list := []models.Member{caller.Member()}
	for _, m := range members {
		phone := models.NormalizePhone(m.Phone)
		if phone == "" {
			return nil, errs.Validation("member phone is required")
		}
		list = append(list, models.Member{Phone: phone, Name: models.SanitizeText(m.Name)})
	}
	list = models.DedupeMembers(list)

	// Fill blank member names from registered users
	var missing []string
	for _, m := range list {
		if m.Name == "" {
			missing = append(missing, m.Phone)
		}
	}
	if len(missing) > 0 {
		names := s.displayNames(ctx, missing, nil)
		for i := range list {
			if list[i].Name == "" {
				list[i].Name = names[list[i].Phone]
			}
		}
	}

	g := &models.Group{Name: name, Members: list, CreatedBy: caller.Phone}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("group created", "group_id", g.ID, "members", len(g.Members))
	s.record(ctx, activity.GroupCreated(caller.Member(), g))
	return g, nil
}

// LeaveGroup moves the caller to the group's former members. Historical
// splits keep counting toward the remaining members' balances. The creator cannot leave; they delete the group instead. Members
// with an unsettled group balance must settle first.
func (s *Service) LeaveGroup(ctx context.Context, caller models.Identity, groupID string) error {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return err
	}
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if !g.HasMember(caller.Phone) {
		return fmt.Errorf("%w: you are not a member of %q", errs.ErrNotFound, g.Name)
	}
	if g.CreatedBy == caller.Phone {
		return errs.Validation("the creator cannot leave %q; delete the group instead", g.Name)
	}

	balances, _, err := s.groupBalances(ctx, g)
	if err != nil {
		return fmt.Errorf("failed to load group balances: %w", err)
	}
	if b := calculator.Round(balances[caller.Phone]); !b.IsZero() {
		return errs.Validation("settle your balance of %s in %q before leaving", activity.FormatAmount(b.Abs()), g.Name)
	}

	remaining := make([]models.Member, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if m.Phone != caller.Phone {
			remaining = append(remaining, m)
		}
	}
	former := append(slices.Clone(g.FormerMembers), models.Member{Phone: caller.Phone, Name: g.MemberName(caller.Phone)})
	former = models.DedupeMembers(former)
	if err := s.store.UpdateGroupMembers(ctx, g.ID, remaining, former); err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	g.Members = remaining
	g.FormerMembers = former

	s.logger.Info("group left", "group_id", g.ID, "user", caller.Phone)
	s.record(ctx, activity.GroupLeft(caller.Member(), g))
	return nil
}

// DeleteGroup removes a group and its expenses. Any member may delete it.
func (s *Service) DeleteGroup(ctx context.Context, caller models.Identity, groupID string) error {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return err
	}
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if !g.HasMember(caller.Phone) && g.CreatedBy != caller.Phone {
		return fmt.Errorf("%w: only members can delete %q", errs.ErrForbidden, g.Name)
	}
	if err := s.store.DeleteGroup(ctx, g.ID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.logger.Info("group deleted", "group_id", g.ID, "user", caller.Phone)
	s.record(ctx, activity.GroupDeleted(caller.Member(), g))
	return nil
}

// ListGroups returns the groups the caller created or belongs to.
func (s *Service) ListGroups(ctx context.Context, caller models.Identity) ([]models.Group, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsOf(ctx, caller.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
