package board

// Verdict classifies the state of a position for the side to move.
type Verdict uint8

const (
	NotTerminal Verdict = iota
	Checkmate
	Stalemate
	InsufficientMaterial
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "not terminal"
	}
}

// Outcome inspects the position for the side to move. Insufficient material
// is tested before move generation so a bare-kings position reports a draw
// even though the side to move also has no captures left.
func (p *Position) Outcome() Verdict {
	if p.insufficientMaterial() {
		return InsufficientMaterial
	}
	if p.HasLegalMoves(p.SideToMove) {
		return NotTerminal
	}
	if p.InCheck(p.SideToMove == White) {
		return Checkmate
	}
	return Stalemate
}

// insufficientMaterial reports the dead positions no sequence of legal moves
// can mate from: K vs K, K+minor vs K, and K+B vs K+B with no knights on the
// board. Any queen, rook or pawn means mating material remains.
func (p *Position) insufficientMaterial() bool {
	var bishops, knights, other int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			switch lower(p.Squares[r][c]) {
			case Empty, 'k':
			case 'b':
				bishops++
			case 'n':
				knights++
			default:
				other++
			}
		}
	}
	if other > 0 {
		return false
	}
	minors := bishops + knights
	if minors <= 1 {
		return true
	}
	return minors == 2 && knights == 0 && bishops == 2 && p.bishopsOnBothSides()
}

// bishopsOnBothSides reports whether each side has exactly one bishop.
func (p *Position) bishopsOnBothSides() bool {
	var white, black int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if lower(p.Squares[r][c]) != 'b' {
				continue
			}
			if IsWhitePiece(p.Squares[r][c]) {
				white++
			} else {
				black++
			}
		}
	}
	return white == 1 && black == 1
}
