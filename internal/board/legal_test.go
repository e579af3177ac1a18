package board

import (
	"testing"
)

func positionFromRows(t *testing.T, rows []string, side Color) *Position {
	t.Helper()
	b, err := ParseBoard(rows)
	if err != nil {
		t.Fatal("Error parsing board:", err)
	}
	return &Position{Squares: b, SideToMove: side, EnPassantFile: -1}
}

func mustCoords(t *testing.T, sq string) (int, int) {
	t.Helper()
	r, c, err := NotationToCoords(sq)
	if err != nil {
		t.Fatal("Error parsing square:", err)
	}
	return r, c
}

func checkMove(t *testing.T, p *Position, from, to string, side Color, want bool) {
	t.Helper()
	fr, fc := mustCoords(t, from)
	tr, tc := mustCoords(t, to)
	got := p.IsLegalMove(fr, fc, tr, tc, side)
	if got != want {
		t.Errorf("IsLegalMove(%s%s, %v) = %v, want %v", from, to, side, got, want)
	}
}

func TestStartPositionMoves(t *testing.T) {
	p := NewPosition()

	checkMove(t, p, "e2", "e4", White, true)
	checkMove(t, p, "e2", "e3", White, true)
	checkMove(t, p, "g1", "f3", White, true)
	checkMove(t, p, "b1", "c3", White, true)

	// Blocked or plainly impossible from the start position.
	checkMove(t, p, "e2", "e5", White, false)
	checkMove(t, p, "e1", "e2", White, false)
	checkMove(t, p, "a1", "a3", White, false)
	checkMove(t, p, "f1", "c4", White, false)

	// Wrong side.
	checkMove(t, p, "e7", "e5", White, false)
	checkMove(t, p, "e7", "e5", Black, true)
}

func TestPawnCaptures(t *testing.T) {
	p := positionFromRows(t, []string{
		"....K...",
		"........",
		"........",
		"...P....",
		"....p...",
		"........",
		"........",
		"....k...",
	}, White)

	checkMove(t, p, "e4", "d5", White, true)  // capture
	checkMove(t, p, "e4", "f5", White, false) // nothing there
	checkMove(t, p, "e4", "e5", White, true)  // push
	checkMove(t, p, "d5", "e4", Black, true)  // black captures back
}

func TestEnPassant(t *testing.T) {
	// Black just played d7-d5; the white pawn on e5 may capture on d6.
	p := positionFromRows(t, []string{
		"....K...",
		"........",
		"........",
		"...Pp...",
		"........",
		"........",
		"........",
		"....k...",
	}, White)
	p.EnPassantFile = 3

	fr, fc := mustCoords(t, "e5")
	tr, tc := mustCoords(t, "d6")
	if !p.IsLegalMove(fr, fc, tr, tc, White) {
		t.Fatal("En passant capture should be legal")
	}

	p.ApplyMove(fr, fc, tr, tc, 0)
	if p.Squares[tr][tc] != 'p' {
		t.Error("Pawn should land on d6")
	}
	dr, dc := mustCoords(t, "d5")
	if p.Squares[dr][dc] != Empty {
		t.Error("Captured pawn on d5 should be removed")
	}

	// Without the en passant file set the same capture is illegal.
	q := positionFromRows(t, []string{
		"....K...",
		"........",
		"........",
		"...Pp...",
		"........",
		"........",
		"........",
		"....k...",
	}, White)
	checkMove(t, q, "e5", "d6", White, false)
}

func TestCastling(t *testing.T) {
	rows := []string{
		"R...K..R",
		"PPPPPPPP",
		"........",
		"........",
		"........",
		"........",
		"pppppppp",
		"r...k..r",
	}

	t.Run("both sides available", func(t *testing.T) {
		p := positionFromRows(t, rows, White)
		checkMove(t, p, "e1", "g1", White, true)
		checkMove(t, p, "e1", "c1", White, true)
		checkMove(t, p, "e8", "g8", Black, true)
		checkMove(t, p, "e8", "c8", Black, true)
	})

	t.Run("king moved", func(t *testing.T) {
		p := positionFromRows(t, rows, White)
		p.WhiteKingMoved = true
		checkMove(t, p, "e1", "g1", White, false)
		checkMove(t, p, "e1", "c1", White, false)
	})

	t.Run("rook moved", func(t *testing.T) {
		p := positionFromRows(t, rows, White)
		p.WhiteRookHMoved = true
		checkMove(t, p, "e1", "g1", White, false)
		checkMove(t, p, "e1", "c1", White, true)
	})

	t.Run("path attacked", func(t *testing.T) {
		p := positionFromRows(t, []string{
			"R...K..R",
			"PPPP.PPP",
			"........",
			"........",
			"........",
			"......P.",
			"ppppp.pp",
			"r...k..r",
		}, White)
		// Black pawn on g3 covers f2 but not f1; kingside stays legal.
		checkMove(t, p, "e1", "g1", White, true)

		p.Squares[5][6] = Empty
		fr, fc := mustCoords(t, "f3")
		p.Squares[fr][fc] = 'R' // black rook attacking f1
		checkMove(t, p, "e1", "g1", White, false)
	})

	t.Run("in check", func(t *testing.T) {
		p := positionFromRows(t, []string{
			"R...K..R",
			"PPPP.PPP",
			"........",
			"........",
			"....R...",
			"........",
			"pppp.ppp",
			"r...k..r",
		}, White)
		checkMove(t, p, "e1", "g1", White, false)
		checkMove(t, p, "e1", "c1", White, false)
	})

	t.Run("rook move executes hop", func(t *testing.T) {
		p := positionFromRows(t, rows, White)
		fr, fc := mustCoords(t, "e1")
		tr, tc := mustCoords(t, "g1")
		p.ApplyMove(fr, fc, tr, tc, 0)
		if p.Squares[7][6] != 'k' || p.Squares[7][5] != 'r' {
			t.Error("Kingside castle should leave king on g1 and rook on f1")
		}
		if p.Squares[7][7] != Empty {
			t.Error("h1 should be empty after castling")
		}
		if !p.WhiteKingMoved {
			t.Error("King moved flag should be set")
		}
	})
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// White knight on e2 is pinned against the king by the black rook on e8.
	p := positionFromRows(t, []string{
		"....R.K.",
		"........",
		"........",
		"........",
		"........",
		"........",
		"....n...",
		"....k...",
	}, White)

	checkMove(t, p, "e2", "c3", White, false)
	checkMove(t, p, "e2", "g3", White, false)
	// The king itself can step aside.
	checkMove(t, p, "e1", "d1", White, true)
}

func TestMustResolveCheck(t *testing.T) {
	// White king on e1 checked by the rook on e8; only blocking, capturing
	// or stepping off the file is legal.
	p := positionFromRows(t, []string{
		"....R.K.",
		"........",
		"........",
		"........",
		"........",
		"........",
		"...q....",
		"....k...",
	}, White)

	checkMove(t, p, "d2", "e2", White, true)  // block
	checkMove(t, p, "d2", "e3", White, true)  // block
	checkMove(t, p, "e1", "d1", White, true)  // step aside
	checkMove(t, p, "d2", "d5", White, false) // ignores the check
}

func TestValidMovesFrom(t *testing.T) {
	p := NewPosition()

	fr, fc := mustCoords(t, "g1")
	moves := p.ValidMovesFrom(fr, fc, White)
	if len(moves) != 2 {
		t.Fatalf("Knight on g1 should have 2 moves, got %d", len(moves))
	}

	fr, fc = mustCoords(t, "e2")
	moves = p.ValidMovesFrom(fr, fc, White)
	if len(moves) != 2 {
		t.Fatalf("Pawn on e2 should have 2 moves, got %d", len(moves))
	}

	// Empty square yields no moves rather than an error.
	fr, fc = mustCoords(t, "e4")
	if moves = p.ValidMovesFrom(fr, fc, White); len(moves) != 0 {
		t.Errorf("Empty square should yield no moves, got %d", len(moves))
	}
}

func TestPromotion(t *testing.T) {
	p := positionFromRows(t, []string{
		"...K....",
		"p.......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"....k...",
	}, White)

	fr, fc := mustCoords(t, "a7")
	tr, tc := mustCoords(t, "a8")
	if !p.IsLegalMove(fr, fc, tr, tc, White) {
		t.Fatal("Promotion push should be legal")
	}

	t.Run("default queen", func(t *testing.T) {
		q := *p
		q.ApplyMove(fr, fc, tr, tc, 0)
		if q.Squares[tr][tc] != 'q' {
			t.Errorf("Expected white queen on a8, got %q", q.Squares[tr][tc])
		}
	})

	t.Run("underpromotion", func(t *testing.T) {
		q := *p
		q.ApplyMove(fr, fc, tr, tc, 'n')
		if q.Squares[tr][tc] != 'n' {
			t.Errorf("Expected white knight on a8, got %q", q.Squares[tr][tc])
		}
	})

	t.Run("black promotes uppercase", func(t *testing.T) {
		q := positionFromRows(t, []string{
			"...K....",
			"........",
			"........",
			"........",
			"........",
			"........",
			".P......",
			"....k...",
		}, Black)
		fr, fc := mustCoords(t, "b2")
		tr, tc := mustCoords(t, "b1")
		q.ApplyMove(fr, fc, tr, tc, 'q')
		if q.Squares[tr][tc] != 'Q' {
			t.Errorf("Expected black queen on b1, got %q", q.Squares[tr][tc])
		}
	})
}

func TestDoublePushSetsEnPassantFile(t *testing.T) {
	p := NewPosition()
	fr, fc := mustCoords(t, "e2")
	tr, tc := mustCoords(t, "e4")
	p.ApplyMove(fr, fc, tr, tc, 0)
	if p.EnPassantFile != 4 {
		t.Errorf("EnPassantFile = %d, want 4", p.EnPassantFile)
	}

	// A quiet move clears it again.
	fr, fc = mustCoords(t, "g8")
	tr, tc = mustCoords(t, "f6")
	p.ApplyMove(fr, fc, tr, tc, 0)
	if p.EnPassantFile != -1 {
		t.Errorf("EnPassantFile = %d, want -1", p.EnPassantFile)
	}
}
