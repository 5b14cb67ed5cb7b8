package memory

import (
	"context"
	"testing"

	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
	"github.com/mmynk/splitify/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := &models.Group{Name: "Flat", CreatedBy: "1", Members: []models.Member{{Phone: "1", Name: "A"}}}
	if err := s.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	g.Members[0].Name = "mutated"

	got, err := s.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Members[0].Name != "A" {
		t.Errorf("store shares memory with caller: got %q", got.Members[0].Name)
	}
}
