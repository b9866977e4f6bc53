package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/robalobadob/bingo/internal/game"
)

func newGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.New(game.ModeFirst, [][]int{{1, 2, 3, 4}}, []int{1, 2})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return g
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := newGame(t)

	if _, err := s.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Save err = %v", err)
	}
	if err := s.Save(ctx, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, g.ID)
	if err != nil || got != g {
		t.Fatalf("Get = %p, %v; want %p", got, err, g)
	}
	if err := s.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete err = %v", err)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := newGame(t)
			_ = s.Save(ctx, g)
			if _, err := s.Get(ctx, g.ID); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()
}
