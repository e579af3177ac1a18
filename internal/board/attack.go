package board

// abs for small coordinate deltas.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// pathClear reports whether every square strictly between (fromR,fromC) and
// (toR,toC) is empty, stepping one square at a time in the given direction.
func (p *Position) pathClear(fromR, fromC, toR, toC, stepR, stepC int) bool {
	r, c := fromR+stepR, fromC+stepC
	for r != toR || c != toC {
		if p.Squares[r][c] != Empty {
			return false
		}
		r += stepR
		c += stepC
	}
	return true
}

// sign returns -1, 0 or 1.
func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// IsSquareAttacked reports whether any piece of the given color attacks the
// square under normal movement rules. Sliding pieces stop at the first
// occupant; pawns attack one square diagonally forward (white forward is
// toward row 0).
func (p *Position) IsSquareAttacked(row, col int, byWhite bool) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := p.Squares[r][c]
			if piece == Empty || IsWhitePiece(piece) != byWhite {
				continue
			}

			dr := row - r
			dc := col - c

			switch lower(piece) {
			case 'p':
				dir := 1
				if byWhite {
					dir = -1
				}
				if dr == dir && abs(dc) == 1 {
					return true
				}
			case 'n':
				if (abs(dr) == 2 && abs(dc) == 1) || (abs(dr) == 1 && abs(dc) == 2) {
					return true
				}
			case 'b':
				if abs(dr) == abs(dc) && dr != 0 && p.pathClear(r, c, row, col, sign(dr), sign(dc)) {
					return true
				}
			case 'r':
				if (dr == 0) != (dc == 0) && p.pathClear(r, c, row, col, sign(dr), sign(dc)) {
					return true
				}
			case 'q':
				if (dr == 0 || dc == 0 || abs(dr) == abs(dc)) && (dr != 0 || dc != 0) &&
					p.pathClear(r, c, row, col, sign(dr), sign(dc)) {
					return true
				}
			case 'k':
				if abs(dr) <= 1 && abs(dc) <= 1 && (dr != 0 || dc != 0) {
					return true
				}
			}
		}
	}
	return false
}

// findKing locates the king of the given color.
func (p *Position) findKing(white bool) (row, col int, ok bool) {
	king := byte('K')
	if white {
		king = 'k'
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p.Squares[r][c] == king {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// InCheck reports whether the king of the given color is attacked.
func (p *Position) InCheck(white bool) bool {
	r, c, ok := p.findKing(white)
	if !ok {
		return false
	}
	return p.IsSquareAttacked(r, c, !white)
}
