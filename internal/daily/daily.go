// internal/daily/daily.go
//
// Deterministic daily puzzles.
// Responsibilities:
//   - DateKey: the UTC calendar day a puzzle belongs to.
//   - Seed: HMAC-SHA256 of the date keyed by DAILY_SALT, so players cannot
//     predict tomorrow's puzzle but everyone gets the same one today.
//   - Generate/ForDate: draws and 5x5 boards from a seeded PCG source.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/bingo/internal/puzzle"
)

const (
	boardSide = 5
	poolSize  = 100 // numbers 0..99, as in the classic puzzle input
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty of entropy for a PCG seed
	return binary.BigEndian.Uint64(sum[:8])
}

// Generate builds the puzzle for seed: every number in the pool is drawn
// once in shuffled order, so all boards eventually win.
func Generate(seed uint64, boards int) puzzle.Puzzle {
	if boards <= 0 {
		boards = 1
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := puzzle.Puzzle{
		Draws:  rng.Perm(poolSize),
		Boards: make([][]int, boards),
	}
	for i := range p.Boards {
		p.Boards[i] = rng.Perm(poolSize)[:boardSide*boardSide]
	}
	return p
}

// ForDate is Generate(Seed(date, salt), boards).
func ForDate(date time.Time, salt string, boards int) puzzle.Puzzle {
	return Generate(Seed(date, salt), boards)
}
