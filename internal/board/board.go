// Package board implements the server-side chess rules engine over a plain
// 8x8 mailbox board. All functions are pure with respect to I/O: they take a
// Position, hold no locks, and touch nothing outside it.
package board

import (
	"fmt"
	"strings"
)

// Color identifies a side. White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Empty is the byte marking an unoccupied square.
const Empty = '.'

// Board is an 8x8 mailbox. Row 0 is rank 8, column 0 is file a.
// Lowercase pieces are white, uppercase are black, '.' is empty.
type Board [8][8]byte

// IsWhitePiece reports whether the byte encodes a white piece.
func IsWhitePiece(p byte) bool {
	return p >= 'a' && p <= 'z'
}

// PieceColor returns the color of the piece byte. The square must not be empty.
func PieceColor(p byte) Color {
	if IsWhitePiece(p) {
		return White
	}
	return Black
}

// lower folds a piece byte to its lowercase kind letter (p n b r q k).
func lower(p byte) byte {
	if p >= 'A' && p <= 'Z' {
		return p + 32
	}
	return p
}

// Position is a complete game state: the board plus the bookkeeping needed
// for castling, en passant and move numbering.
type Position struct {
	Squares Board

	SideToMove Color

	WhiteKingMoved  bool
	BlackKingMoved  bool
	WhiteRookAMoved bool
	WhiteRookHMoved bool
	BlackRookAMoved bool
	BlackRookHMoved bool

	// EnPassantFile is the file (0-7) of the pawn that just advanced two
	// squares, or -1 when no en passant capture is available.
	EnPassantFile int

	LastFromRow, LastFromCol int
	LastToRow, LastToCol     int

	HalfMoveClock  int
	FullMoveNumber int
}

// NewPosition returns the standard starting position with white to move.
func NewPosition() *Position {
	p := &Position{
		EnPassantFile:  -1,
		LastFromRow:    -1,
		LastFromCol:    -1,
		LastToRow:      -1,
		LastToCol:      -1,
		FullMoveNumber: 1,
	}
	back := "RNBQKBNR"
	for c := 0; c < 8; c++ {
		p.Squares[0][c] = back[c]      // black pieces, rank 8
		p.Squares[1][c] = 'P'          // black pawns
		p.Squares[6][c] = 'p'          // white pawns
		p.Squares[7][c] = back[c] + 32 // white pieces, rank 1
		for r := 2; r < 6; r++ {
			p.Squares[r][c] = Empty
		}
	}
	return p
}

// ParseBoard builds a Board from eight row strings, row 0 (rank 8) first.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != 8 {
		return b, fmt.Errorf("board needs 8 rows, got %d", len(rows))
	}
	for r, row := range rows {
		if len(row) != 8 {
			return b, fmt.Errorf("row %d needs 8 squares, got %d", r, len(row))
		}
		for c := 0; c < 8; c++ {
			switch ch := row[c]; ch {
			case 'p', 'n', 'b', 'r', 'q', 'k', 'P', 'N', 'B', 'R', 'Q', 'K', Empty:
				b[r][c] = ch
			default:
				return b, fmt.Errorf("row %d: invalid piece %q", r, ch)
			}
		}
	}
	return b, nil
}

// FlatString returns the 64-character row-major rendering used in match
// history files.
func (b *Board) FlatString() string {
	var sb strings.Builder
	sb.Grow(64)
	for r := 0; r < 8; r++ {
		sb.Write(b[r][:])
	}
	return sb.String()
}

// String renders the board with rank and file labels, for logs and tests.
func (p *Position) String() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		fmt.Fprintf(&sb, "%d  ", 8-r)
		for c := 0; c < 8; c++ {
			sb.WriteByte(p.Squares[r][c])
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "side to move: %s\n", p.SideToMove)
	return sb.String()
}
