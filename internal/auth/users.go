// internal/auth/users.go
//
// User accounts backed by the users table.
// Passwords are bcrypt hashes; usernames are matched case-insensitively.
// Stats columns (games_played, wins, streak) are bumped by daily results.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// Users is the account repository.
type Users struct{ db *sql.DB }

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create validates input, checks uniqueness, hashes the password, and inserts a new user.
func (u *Users) Create(ctx context.Context, username, pw string) (*User, error) {
	username = NormalizeUsername(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := u.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	usr := &User{ID: GenID(), Username: username, PasswordHash: string(h), CreatedAt: now}
	if _, err := u.db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		usr.ID, usr.Username, usr.PasswordHash, now.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return usr, nil
}

// ByUsername loads a user by case-insensitive username.
func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                  FROM users WHERE lower(username)=lower(?)`, strings.TrimSpace(username))
	return scanUser(row)
}

// ByID loads a user by id.
func (u *Users) ByID(ctx context.Context, id string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

// Authenticate returns the user if pw matches the stored hash.
func (u *Users) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	usr, err := u.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(usr.PasswordHash, pw) {
		return nil, ErrUserNotFound
	}
	return usr, nil
}

// BumpStats increments games played and updates wins/streak (within tx).
func BumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.Streak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// CheckPassword is a bcrypt verifier.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NormalizeUsername trims whitespace.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// GenID creates a 22-char URL-safe, crypto-random identifier (no padding).
func GenID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
