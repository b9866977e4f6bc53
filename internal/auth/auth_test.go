package auth

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/database"
)

func openUsers(t *testing.T) (*Users, *sql.DB) {
	t.Helper()
	db, err := database.OpenMigrated(database.DriverPureGo, filepath.Join(t.TempDir(), "auth.db"), assets.Migrations())
	if err != nil {
		t.Fatalf("OpenMigrated: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUsers(db), db
}

func TestCreateAndAuthenticate(t *testing.T) {
	users, _ := openUsers(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "  alice_1 ", "correct horse")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "alice_1" || len(u.ID) != 22 {
		t.Fatalf("created %+v", u)
	}
	if _, err := users.Create(ctx, "ALICE_1", "another password"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate Create err = %v", err)
	}

	got, err := users.Authenticate(ctx, "Alice_1", "correct horse")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate = %+v, %v", got, err)
	}
	if _, err := users.Authenticate(ctx, "alice_1", "wrong password"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := users.ByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ByID(missing) err = %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name, user, pass string
		ok               bool
	}{
		{"ok", "bob", "password1", true},
		{"short user", "bo", "password1", false},
		{"bad chars", "bob!", "password1", false},
		{"short pass", "bob", "pw", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSignup(tt.user, tt.pass); (err == nil) != tt.ok {
				t.Fatalf("ValidateSignup(%q, %q) = %v", tt.user, tt.pass, err)
			}
		})
	}
}

func TestBumpStats(t *testing.T) {
	users, db := openUsers(t)
	ctx := context.Background()
	u, err := users.Create(ctx, "carol", "password1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, won := range []bool{true, true, false, true} {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx: %v", err)
		}
		if err := BumpStats(ctx, tx, u.ID, won); err != nil {
			t.Fatalf("BumpStats: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}
	got, err := users.ByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.GamesPlayed != 4 || got.Wins != 3 || got.Streak != 1 {
		t.Fatalf("stats = %d/%d/%d, want 4/3/1", got.GamesPlayed, got.Wins, got.Streak)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tk := Tokens{Secret: []byte("s3cret"), TTL: time.Hour}
	s, exp, err := tk.Sign("id1", "dave")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("expiry too early: %v", exp)
	}
	c, err := tk.Parse(s)
	if err != nil || c.ID != "id1" || c.Username != "dave" {
		t.Fatalf("Parse = %+v, %v", c, err)
	}

	other := Tokens{Secret: []byte("other"), TTL: time.Hour}
	if _, err := other.Parse(s); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret err = %v", err)
	}
	expired := Tokens{Secret: []byte("s3cret"), TTL: -time.Minute}
	old, _, _ := expired.Sign("id1", "dave")
	if _, err := tk.Parse(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v", err)
	}
}
