package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

func TestRegisterUser(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	t.Run("normalizes phone", func(t *testing.T) {
		u, err := svc.RegisterUser(ctx, models.Identity{Phone: "(555) 999-0000", Name: " Erin ", UID: "u"})
		if err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
		if u.Phone != "5559990000" || u.Name != "Erin" {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("requires phone and name", func(t *testing.T) {
		if _, err := svc.RegisterUser(ctx, models.Identity{Name: "No Phone"}); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if _, err := svc.RegisterUser(ctx, models.Identity{Phone: "123"}); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("display name", func(t *testing.T) {
		name, err := svc.GetUserDisplayName(ctx, "555-111-0000")
		if err != nil {
			t.Fatalf("GetUserDisplayName failed: %v", err)
		}
		if name != "Alice" {
			t.Errorf("expected Alice, got %q", name)
		}
		if _, err := svc.GetUserDisplayName(ctx, "000"); !errors.Is(err, errs.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestAddFriend(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	f, err := svc.AddFriend(ctx, alice, "(555) 222-0000")
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if f.Metadata[alice.Phone] != "Alice" || f.Metadata[bob.Phone] != "Bob" {
		t.Errorf("expected both names snapshotted, got %v", f.Metadata)
	}

	// Reverse direction is the same unordered pair
	if _, err := svc.AddFriend(ctx, bob, alice.Phone); !errors.Is(err, errs.ErrDuplicateFriendship) {
		t.Errorf("expected ErrDuplicateFriendship, got %v", err)
	}

	for _, tc := range []struct {
		user   models.Identity
		friend string
	}{{alice, bob.Phone}, {bob, alice.Phone}} {
		friends, err := svc.ListFriends(ctx, tc.user)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		count := 0
		for _, fr := range friends {
			if fr.Phone == tc.friend {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%s: expected friend exactly once, got %d", tc.user.Name, count)
		}
	}

	tests := []struct {
		name    string
		phone   string
		wantErr error
	}{
		{"unregistered candidate", "5550000000", errs.ErrUserNotFound},
		{"self", alice.Phone, errs.ErrValidation},
		{"empty", "  ", errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddFriend(ctx, alice, tt.phone); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAddFriendConcurrent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := svc.AddFriend(ctx, alice, bob.Phone)
				errCh <- err
			} else {
				_, err := svc.AddFriend(ctx, bob, alice.Phone)
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	created := 0
	for err := range errCh {
		if err == nil {
			created++
		} else if !errors.Is(err, errs.ErrDuplicateFriendship) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one friendship, got %d", created)
	}
}

func TestRemoveFriend(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.AddFriend(ctx, alice, bob.Phone); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	// Bob removes the friendship Alice created
	if err := svc.RemoveFriend(ctx, bob, alice.Phone); err != nil {
		t.Fatalf("RemoveFriend failed: %v", err)
	}
	friends, _ := svc.ListFriends(ctx, alice)
	if len(friends) != 0 {
		t.Errorf("expected no friends left, got %v", friends)
	}
	if err := svc.RemoveFriend(ctx, alice, bob.Phone); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggestFriends(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.AddFriend(ctx, alice, bob.Phone); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}

	contacts := []models.Contact{
		{Name: "Bobby", PhoneNumber: "555-222-0000"},   // already a friend
		{Name: "Caz", PhoneNumber: "(555) 333-0000"},   // registered
		{Name: "Caz dup", PhoneNumber: "5553330000"},   // duplicate contact
		{Name: "Stranger", PhoneNumber: "555-000-1234"}, // not registered
		{Name: "Me", PhoneNumber: alice.Phone},
	}
	got, err := svc.SuggestFriends(ctx, alice, contacts)
	if err != nil {
		t.Fatalf("SuggestFriends failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %+v", got)
	}
	if got[0].Phone != carol.Phone || got[0].ContactName != "Caz" || got[0].UserName != "Carol" {
		t.Errorf("unexpected suggestion %+v", got[0])
	}
}
