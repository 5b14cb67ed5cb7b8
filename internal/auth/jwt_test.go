package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/splitify/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Generate(models.Identity{Phone: "(555) 123-4567", Name: "Alice", UID: "uid-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	id := claims.Identity()
	if id.Phone != "5551234567" || id.Name != "Alice" || id.UID != "uid-1" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	expired, _ := NewJWTManager("test-secret", -time.Minute).Generate(models.Identity{Phone: "5551234567", Name: "A"})
	otherSecret, _ := NewJWTManager("other-secret", time.Hour).Generate(models.Identity{Phone: "5551234567", Name: "A"})
	noPhone, _ := m.Generate(models.Identity{Name: "A"})

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		Phone: "5551234567",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongAlg, err := hs512.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"no phone", noPhone},
		{"wrong algorithm", wrongAlg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
