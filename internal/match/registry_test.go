package match

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hailam/chesshub/internal/board"
)

func TestCreateFixedColors(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	m, err := r.Create(1, "alice", 2, "bob", Fixed)
	if err != nil {
		t.Fatal(err)
	}
	if m.White != "alice" || m.Black != "bob" {
		t.Fatalf("Fixed assignment gave white=%s black=%s", m.White, m.Black)
	}
	if m.WhiteSlot != 1 || m.BlackSlot != 2 {
		t.Fatalf("slots %d/%d, want 1/2", m.WhiteSlot, m.BlackSlot)
	}
	if m.Pos.SideToMove != board.White {
		t.Error("new match must start with white to move")
	}
	if m.Pos.Squares[7][4] != 'k' || m.Pos.Squares[0][4] != 'K' {
		t.Error("new match must start from the standard position")
	}
}

func TestCreateCoinUsesBothColors(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	aliceWhite, bobWhite := false, false
	for i := 0; i < 100 && !(aliceWhite && bobWhite); i++ {
		m, err := r.Create(1, "alice", 2, "bob", Coin)
		if err != nil {
			t.Fatal(err)
		}
		if m.White == "alice" {
			aliceWhite = true
		} else {
			bobWhite = true
		}
		r.Deactivate(m.ID)
	}
	if !aliceWhite || !bobWhite {
		t.Error("coin assignment never flipped in 100 tries")
	}
}

func TestMatchIDFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := NewMatchID()
		if len(id) != 9 || id[0] != 'M' {
			t.Fatalf("bad match id %q", id)
		}
		for _, c := range id[1:] {
			if !strings.ContainsRune(idAlphabet, c) {
				t.Fatalf("match id %q has invalid char %q", id, c)
			}
		}
	}
}

func TestCapacityAndReuse(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	ids := make([]string, 0, MaxMatches)
	for i := 0; i < MaxMatches; i++ {
		m, err := r.Create(0, "a", 1, "b", Fixed)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, m.ID)
	}

	if _, err := r.Create(0, "a", 1, "b", Fixed); err != ErrNoSlot {
		t.Fatalf("Create over capacity: got %v, want ErrNoSlot", err)
	}

	// Deactivating frees the slot for the next game.
	if _, ok := r.Deactivate(ids[10]); !ok {
		t.Fatal("Deactivate should find the match")
	}
	if _, err := r.Create(0, "a", 1, "b", Fixed); err != nil {
		t.Fatal("Create after deactivate:", err)
	}
}

func TestFindAndUpdate(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	m, err := r.Create(1, "alice", 2, "bob", Fixed)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Find("MNOPE0000"); ok {
		t.Error("Find should miss unknown ids")
	}
	got, ok := r.Find(m.ID)
	if !ok || got.White != "alice" {
		t.Fatalf("Find = (%+v,%v)", got, ok)
	}

	err = r.Update(m.ID, func(mm *Match) error {
		mm.Pos.SideToMove = board.Black
		return nil
	})
	if err != nil {
		t.Fatal("Update:", err)
	}
	got, _ = r.Find(m.ID)
	if got.Pos.SideToMove != board.Black {
		t.Error("Update mutation was not applied")
	}

	if err := r.Update("MNOPE0000", func(*Match) error { return nil }); err != ErrNotFound {
		t.Errorf("Update unknown id: got %v, want ErrNotFound", err)
	}
}

func TestSideOfAndOpponent(t *testing.T) {
	m := &Match{White: "alice", Black: "bob", WhiteSlot: 1, BlackSlot: 2}

	side, err := m.SideOf(1)
	if err != nil || side != board.White {
		t.Errorf("SideOf(1) = (%v,%v)", side, err)
	}
	side, err = m.SideOf(2)
	if err != nil || side != board.Black {
		t.Errorf("SideOf(2) = (%v,%v)", side, err)
	}
	if _, err := m.SideOf(9); err != ErrNotInMatch {
		t.Errorf("SideOf(9) err = %v, want ErrNotInMatch", err)
	}

	name, slot := m.Opponent(1)
	if name != "bob" || slot != 2 {
		t.Errorf("Opponent(1) = (%s,%d)", name, slot)
	}
}

func TestRecentRing(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	m, err := r.Create(1, "alice", 2, "bob", Fixed)
	if err != nil {
		t.Fatal(err)
	}
	r.Deactivate(m.ID)

	rec, ok := r.RecentFind(m.ID)
	if !ok {
		t.Fatal("deactivated match should be in the recent ring")
	}
	if rec.RematchOfferedBy != -1 {
		t.Error("fresh recent entry should have no rematch offer")
	}

	if !r.OfferRematch(m.ID, 1) {
		t.Fatal("OfferRematch should find the entry")
	}
	rec, _ = r.RecentFind(m.ID)
	if rec.RematchOfferedBy != 1 {
		t.Errorf("RematchOfferedBy = %d, want 1", rec.RematchOfferedBy)
	}

	if _, ok := r.InvalidateRecent(m.ID); !ok {
		t.Fatal("InvalidateRecent should find the entry")
	}
	if _, ok := r.RecentFind(m.ID); ok {
		t.Error("invalidated entry must leave the rematch window")
	}
	if _, ok := r.InvalidateRecent(m.ID); ok {
		t.Error("second invalidate should miss")
	}
}

func TestRecentRingEviction(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	first, err := r.Create(1, "a", 2, "b", Fixed)
	if err != nil {
		t.Fatal(err)
	}
	r.Deactivate(first.ID)

	// Fill the ring past capacity; the first entry is evicted.
	for i := 0; i < MaxRecent; i++ {
		m, err := r.Create(1, "a", 2, "b", Fixed)
		if err != nil {
			t.Fatal(err)
		}
		r.Deactivate(m.ID)
	}

	if _, ok := r.RecentFind(first.ID); ok {
		t.Error("oldest entry should be evicted on overflow")
	}
}
