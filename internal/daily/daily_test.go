package daily

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/bingo"
	"github.com/robalobadob/bingo/internal/database"
)

func TestDateKeyUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	d := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	if got := DateKey(d); got != "2026-03-01" {
		t.Fatalf("DateKey = %s", got)
	}
}

func TestSeedDeterministic(t *testing.T) {
	d := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	same := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	if Seed(d, "salt") != Seed(same, "salt") {
		t.Fatal("seed differs within one day")
	}
	if Seed(d, "salt") == Seed(d, "pepper") {
		t.Fatal("seed ignores salt")
	}
	if Seed(d, "salt") == Seed(d.AddDate(0, 0, 1), "salt") {
		t.Fatal("seed ignores date")
	}
}

func TestGenerateShape(t *testing.T) {
	p := Generate(42, 10)
	if !reflect.DeepEqual(p, Generate(42, 10)) {
		t.Fatal("Generate is not deterministic")
	}
	if len(p.Draws) != poolSize || len(p.Boards) != 10 {
		t.Fatalf("draws=%d boards=%d", len(p.Draws), len(p.Boards))
	}
	seen := make(map[int]bool)
	for _, d := range p.Draws {
		seen[d] = true
	}
	if len(seen) != poolSize {
		t.Fatalf("draws are not a permutation: %d distinct", len(seen))
	}
	bs, err := p.NewBoards()
	if err != nil {
		t.Fatalf("generated boards invalid: %v", err)
	}
	// every number is drawn, so both parts always have an answer
	if _, err := bingo.FindFirstWinner(bs, p.Draws); err != nil {
		t.Fatalf("FindFirstWinner: %v", err)
	}
	if _, err := bingo.FindLastWinner(bs, p.Draws); err != nil {
		t.Fatalf("FindLastWinner: %v", err)
	}
}

func TestStoreResultsAndLeaderboard(t *testing.T) {
	db, err := database.OpenMigrated(database.DriverPureGo, filepath.Join(t.TempDir(), "daily.db"), assets.Migrations())
	if err != nil {
		t.Fatalf("OpenMigrated: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	s := NewStore(db)

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-10-18")
	if err != nil || played {
		t.Fatalf("AlreadyPlayed = %v, %v", played, err)
	}
	results := []Result{
		{UserID: "u1", Date: "2026-10-18", Attempts: 3, ElapsedMs: 9000},
		{UserID: "u2", Date: "2026-10-18", Attempts: 2, ElapsedMs: 4000},
		{UserID: "u3", Date: "2026-10-18", Attempts: 1, ElapsedMs: 9000},
		{UserID: "u1", Date: "2026-10-17", Attempts: 1, ElapsedMs: 1},
		{UserID: "u1", Date: "2026-10-18", Attempts: 1, ElapsedMs: 1}, // duplicate, ignored
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	played, err = s.AlreadyPlayed(ctx, "u1", "2026-10-18")
	if err != nil || !played {
		t.Fatalf("AlreadyPlayed after insert = %v, %v", played, err)
	}

	top, err := s.Leaderboard(ctx, "2026-10-18", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []LBRow{
		{UserID: "u2", Attempts: 2, ElapsedMs: 4000},
		{UserID: "u3", Attempts: 1, ElapsedMs: 9000},
		{UserID: "u1", Attempts: 3, ElapsedMs: 9000},
	}
	if !reflect.DeepEqual(top, want) {
		t.Fatalf("Leaderboard = %+v, want %+v", top, want)
	}
}
