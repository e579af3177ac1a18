package board

import "fmt"

// NotationToCoords converts algebraic notation ("E2" or "e2") into board
// coordinates. Row 0 is rank 8.
func NotationToCoords(s string) (row, col int, err error) {
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("invalid square: %q", s)
	}
	file := s[0]
	if file >= 'a' && file <= 'h' {
		file -= 32
	}
	rank := s[1]
	if file < 'A' || file > 'H' || rank < '1' || rank > '8' {
		return 0, 0, fmt.Errorf("invalid square: %q", s)
	}
	return 8 - int(rank-'0'), int(file - 'A'), nil
}

// CoordsToNotation converts board coordinates to lowercase algebraic
// notation ("e2"). Inverse of NotationToCoords over all 64 squares.
func CoordsToNotation(row, col int) string {
	return string([]byte{byte('a' + col), byte('8' - row)})
}
