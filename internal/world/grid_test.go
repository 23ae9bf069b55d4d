package world

import (
	"sort"
	"testing"
)

func TestGridQueryRadiusChebyshev(t *testing.T) {
	g := NewGrid()
	g.Insert(Entry{ID: 1, Level: 0, X: 100, Y: 100})
	g.Insert(Entry{ID: 2, Level: 0, X: 105, Y: 100}) // dist 5
	g.Insert(Entry{ID: 3, Level: 0, X: 100, Y: 108}) // dist 8
	g.Insert(Entry{ID: 4, Level: 0, X: 108, Y: 108}) // dist 8 (diagonal counts once)
	g.Insert(Entry{ID: 5, Level: 0, X: 109, Y: 100}) // dist 9, outside
	g.Insert(Entry{ID: 6, Level: 0, X: 91, Y: 92})   // dist 9, outside

	got := g.QueryRadius(0, 100, 100, 8)
	ids := make([]int32, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	want := []int32{1, 2, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, ids)
		}
	}
}

func TestGridQueryExcludesOtherLevels(t *testing.T) {
	g := NewGrid()
	g.Insert(Entry{ID: 1, Level: 0, X: 50, Y: 50})
	g.Insert(Entry{ID: 2, Level: 1, X: 50, Y: 50})

	got := g.QueryRadius(0, 50, 50, 10)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the level-0 entry, got %v", got)
	}
}

func TestGridInsertExistingIDUpdates(t *testing.T) {
	g := NewGrid()
	g.Insert(Entry{ID: 7, Level: 0, X: 10, Y: 10})
	g.Insert(Entry{ID: 7, Level: 0, X: 200, Y: 200})

	if g.Len() != 1 {
		t.Fatalf("expected 1 entry after re-insert, got %d", g.Len())
	}
	if got := g.QueryRadius(0, 10, 10, 16); len(got) != 0 {
		t.Fatalf("expected old cell to be empty, got %v", got)
	}
	got := g.QueryRadius(0, 200, 200, 0)
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("expected entry at new position, got %v", got)
	}
}

func TestGridUpdateMovesAcrossCells(t *testing.T) {
	g := NewGrid()
	g.Insert(Entry{ID: 3, Level: 0, X: 15, Y: 15, Owner: 42})
	g.Update(3, 0, 16, 16) // crosses the cell boundary at 16

	e := g.Get(3)
	if e == nil || e.X != 16 || e.Y != 16 {
		t.Fatalf("expected entry at (16,16), got %+v", e)
	}
	if e.Owner != 42 {
		t.Fatalf("expected owner preserved across update, got %d", e.Owner)
	}
	if got := g.QueryRadius(0, 15, 15, 0); len(got) != 0 {
		t.Fatalf("expected old tile empty, got %v", got)
	}
}

func TestGridRemoveAbsentIsNil(t *testing.T) {
	g := NewGrid()
	if got := g.Remove(99); got != nil {
		t.Fatalf("expected nil for absent id, got %+v", got)
	}

	g.Insert(Entry{ID: 1, Level: 0, X: 5, Y: 5})
	if got := g.Remove(1); got == nil || got.X != 5 {
		t.Fatalf("expected removed entry back, got %+v", got)
	}
	if g.Len() != 0 {
		t.Fatalf("expected empty grid, got %d entries", g.Len())
	}
}

func TestGridNegativeCoordinates(t *testing.T) {
	g := NewGrid()
	g.Insert(Entry{ID: 1, Level: 0, X: -1, Y: -1})
	g.Insert(Entry{ID: 2, Level: 0, X: -17, Y: -17})

	got := g.QueryRadius(0, 0, 0, 1)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the adjacent entry, got %v", got)
	}
	got = g.QueryRadius(0, 0, 0, 17)
	if len(got) != 2 {
		t.Fatalf("expected both entries within radius 17, got %v", got)
	}
}
