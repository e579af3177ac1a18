package board

// ApplyMove executes an already-validated move, handling en passant capture,
// the castling rook hop, pawn promotion and the castling-rights bookkeeping.
// promotion is the requested piece letter ('q','r','b','n' in either case) or
// 0 for the default queen. The side to move is not flipped here.
func (p *Position) ApplyMove(fromR, fromC, toR, toC int, promotion byte) {
	piece := p.Squares[fromR][fromC]
	white := IsWhitePiece(piece)
	capture := p.Squares[toR][toC] != Empty

	epFile := p.EnPassantFile
	p.EnPassantFile = -1

	switch lower(piece) {
	case 'p':
		// En passant removes the pawn beside the origin square.
		if toC != fromC && p.Squares[toR][toC] == Empty && toC == epFile {
			p.Squares[fromR][toC] = Empty
			capture = true
		}
		if fromR-toR == 2 || toR-fromR == 2 {
			p.EnPassantFile = fromC
		}

	case 'k':
		if toC-fromC == 2 {
			p.Squares[fromR][5] = p.Squares[fromR][7]
			p.Squares[fromR][7] = Empty
		} else if fromC-toC == 2 {
			p.Squares[fromR][3] = p.Squares[fromR][0]
			p.Squares[fromR][0] = Empty
		}
		if white {
			p.WhiteKingMoved = true
		} else {
			p.BlackKingMoved = true
		}

	case 'r':
		switch {
		case white && fromR == 7 && fromC == 0:
			p.WhiteRookAMoved = true
		case white && fromR == 7 && fromC == 7:
			p.WhiteRookHMoved = true
		case !white && fromR == 0 && fromC == 0:
			p.BlackRookAMoved = true
		case !white && fromR == 0 && fromC == 7:
			p.BlackRookHMoved = true
		}
	}

	p.Squares[toR][toC] = piece
	p.Squares[fromR][fromC] = Empty

	if lower(piece) == 'p' && (toR == 0 || toR == 7) {
		promoted := lower(promotion)
		switch promoted {
		case 'q', 'r', 'b', 'n':
		default:
			promoted = 'q'
		}
		if !white {
			promoted -= 32
		}
		p.Squares[toR][toC] = promoted
	}

	if lower(piece) == 'p' || capture {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	p.LastFromRow, p.LastFromCol = fromR, fromC
	p.LastToRow, p.LastToCol = toR, toC
}
