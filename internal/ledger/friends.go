package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitify/internal/activity"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

// AddFriend creates a friendship between the caller and a registered user,
// snapshotting both display names.
func (s *Service) AddFriend(ctx context.Context, caller models.Identity, candidatePhone string) (*models.Friendship, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	candidate := models.NormalizePhone(candidatePhone)
	if candidate == "" {
		return nil, errs.Validation("friend phone is required")
	}
	if candidate == caller.Phone {
		return nil, errs.Validation("cannot add yourself as a friend")
	}

	user, err := s.getUser(ctx, candidate)
	if err != nil {
		return nil, err
	}

	f := &models.Friendship{
		UserA: caller.Phone,
		UserB: user.Phone,
		Metadata: map[string]string{
			caller.Phone: caller.Name,
			user.Phone:   user.Name,
		},
	}
	// The store's composite key makes the duplicate check atomic with the insert
	if err := s.store.AddFriendship(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}

	s.logger.Info("friend added", "user", caller.Phone, "friend", user.Phone)
	s.record(ctx, activity.FriendAdded(caller.Member(), models.Member{Phone: user.Phone, Name: user.Name}, f.ID))
	return f, nil
}

// RemoveFriend deletes the friendship between the caller and friendPhone,
// whichever of them created it. Shared expenses are kept.
func (s *Service) RemoveFriend(ctx context.Context, caller models.Identity, friendPhone string) error {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return err
	}
	friend := models.NormalizePhone(friendPhone)
	if friend == "" {
		return errs.Validation("friend phone is required")
	}

	name := ""
	if friends, err := s.store.ListFriendsOf(ctx, caller.Phone); err == nil {
		for _, f := range friends {
			if f.Phone == friend {
				name = f.Name
			}
		}
	}

	if err := s.store.RemoveFriendship(ctx, caller.Phone, friend); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}

	s.logger.Info("friend removed", "user", caller.Phone, "friend", friend)
	s.record(ctx, activity.FriendRemoved(caller.Member(), models.Member{Phone: friend, Name: name}))
	return nil
}

// ListFriends returns the caller's friends with their snapshot names.
func (s *Service) ListFriends(ctx context.Context, caller models.Identity) ([]models.Friend, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}
	friends, err := s.store.ListFriendsOf(ctx, caller.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// SuggestFriends returns the contacts that are registered users and not yet
// friends of the caller. Contacts are matched on normalized phone.
func (s *Service) SuggestFriends(ctx context.Context, caller models.Identity, contacts []models.Contact) ([]Suggestion, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.ListFriendsOf(ctx, caller.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	skip := map[string]bool{caller.Phone: true}
	for _, f := range friends {
		skip[f.Phone] = true
	}

	var phones []string
	contactNames := make(map[string]string)
	for _, c := range contacts {
		p := models.NormalizePhone(c.PhoneNumber)
		if p == "" || skip[p] {
			continue
		}
		if _, seen := contactNames[p]; seen {
			continue
		}
		contactNames[p] = models.SanitizeText(c.Name)
		phones = append(phones, p)
	}
	if len(phones) == 0 {
		return []Suggestion{}, nil
	}

	users, err := s.store.GetUsersByPhones(ctx, phones)
	if err != nil {
		return nil, fmt.Errorf("failed to look up contacts: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(users))
	for _, p := range phones {
		u, ok := users[p]
		if !ok {
			continue
		}
		suggestions = append(suggestions, Suggestion{Phone: p, ContactName: contactNames[p], UserName: u.Name})
	}
	return suggestions, nil
}
