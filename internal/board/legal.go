package board

// IsLegalMove reports whether the side can move the piece on (fromR,fromC)
// to (toR,toC). It checks board bounds, piece ownership, the piece-specific
// motion rule (including en passant and castling), and finally that the
// mover's king is not left in check. The board is restored exactly before
// returning.
func (p *Position) IsLegalMove(fromR, fromC, toR, toC int, side Color) bool {
	if fromR < 0 || fromR > 7 || fromC < 0 || fromC > 7 ||
		toR < 0 || toR > 7 || toC < 0 || toC > 7 {
		return false
	}
	if fromR == toR && fromC == toC {
		return false
	}

	piece := p.Squares[fromR][fromC]
	if piece == Empty {
		return false
	}
	white := IsWhitePiece(piece)
	if (side == White) != white {
		return false
	}

	dest := p.Squares[toR][toC]
	if dest != Empty && IsWhitePiece(dest) == white {
		return false
	}

	dr := toR - fromR
	dc := toC - fromC
	ok := false

	switch lower(piece) {
	case 'p':
		dir, startRow := 1, 1
		if white {
			dir, startRow = -1, 6
		}
		switch {
		case dc == 0 && dest == Empty:
			if dr == dir {
				ok = true
			} else if fromR == startRow && dr == 2*dir && p.Squares[fromR+dir][fromC] == Empty {
				ok = true
			}
		case abs(dc) == 1 && dr == dir && dest != Empty:
			ok = true
		case abs(dc) == 1 && dr == dir && dest == Empty:
			// En passant: the moving pawn sits on its fifth rank, the
			// target file matches the double-pushed pawn, and the square
			// beside it holds the opposing pawn.
			epRow := 4
			enemy := byte('p')
			if white {
				epRow = 3
				enemy = 'P'
			}
			if fromR == epRow && toC == p.EnPassantFile && p.Squares[fromR][toC] == enemy {
				ok = true
			}
		}

	case 'n':
		ok = (abs(dr) == 2 && abs(dc) == 1) || (abs(dr) == 1 && abs(dc) == 2)

	case 'b':
		ok = abs(dr) == abs(dc) && dr != 0 && p.pathClear(fromR, fromC, toR, toC, sign(dr), sign(dc))

	case 'r':
		ok = (dr == 0) != (dc == 0) && p.pathClear(fromR, fromC, toR, toC, sign(dr), sign(dc))

	case 'q':
		ok = (dr == 0 || dc == 0 || abs(dr) == abs(dc)) &&
			p.pathClear(fromR, fromC, toR, toC, sign(dr), sign(dc))

	case 'k':
		if abs(dr) <= 1 && abs(dc) <= 1 {
			ok = true
		} else if dr == 0 && abs(dc) == 2 {
			// Castling is fully validated here, including the attacked-square
			// checks on the crossed and landing files, so no post-move check
			// simulation is needed.
			return p.castlingLegal(fromR, fromC, dc, white)
		}
	}

	if !ok {
		return false
	}

	// The move must not leave the mover's own king in check. Execute it
	// tentatively, test, and restore.
	savedDest := dest
	var epVictim byte = Empty
	if lower(piece) == 'p' && abs(dc) == 1 && dest == Empty && toC == p.EnPassantFile {
		epVictim = p.Squares[fromR][toC]
		p.Squares[fromR][toC] = Empty
	}
	p.Squares[toR][toC] = piece
	p.Squares[fromR][fromC] = Empty

	inCheck := p.InCheck(white)

	p.Squares[fromR][fromC] = piece
	p.Squares[toR][toC] = savedDest
	if epVictim != Empty {
		p.Squares[fromR][toC] = epVictim
	}

	return !inCheck
}

// castlingLegal validates a two-file king move along the home rank.
func (p *Position) castlingLegal(fromR, fromC, dc int, white bool) bool {
	homeRow := 0
	if white {
		homeRow = 7
	}
	if fromR != homeRow || fromC != 4 {
		return false
	}
	if white && p.WhiteKingMoved || !white && p.BlackKingMoved {
		return false
	}
	if p.InCheck(white) {
		return false
	}

	rook := byte('R')
	if white {
		rook = 'r'
	}

	if dc == 2 { // kingside
		if white && p.WhiteRookHMoved || !white && p.BlackRookHMoved {
			return false
		}
		if p.Squares[homeRow][7] != rook {
			return false
		}
		if p.Squares[homeRow][5] != Empty || p.Squares[homeRow][6] != Empty {
			return false
		}
		if p.IsSquareAttacked(homeRow, 5, !white) || p.IsSquareAttacked(homeRow, 6, !white) {
			return false
		}
		return true
	}

	// queenside
	if white && p.WhiteRookAMoved || !white && p.BlackRookAMoved {
		return false
	}
	if p.Squares[homeRow][0] != rook {
		return false
	}
	if p.Squares[homeRow][1] != Empty || p.Squares[homeRow][2] != Empty || p.Squares[homeRow][3] != Empty {
		return false
	}
	if p.IsSquareAttacked(homeRow, 2, !white) || p.IsSquareAttacked(homeRow, 3, !white) {
		return false
	}
	return true
}

// HasLegalMoves reports whether the side has at least one legal move.
func (p *Position) HasLegalMoves(side Color) bool {
	for fromR := 0; fromR < 8; fromR++ {
		for fromC := 0; fromC < 8; fromC++ {
			piece := p.Squares[fromR][fromC]
			if piece == Empty || (side == White) != IsWhitePiece(piece) {
				continue
			}
			for toR := 0; toR < 8; toR++ {
				for toC := 0; toC < 8; toC++ {
					if p.IsLegalMove(fromR, fromC, toR, toC, side) {
						return true
					}
				}
			}
		}
	}
	return false
}

// ValidMovesFrom enumerates every destination reachable from the square by
// the given side, independent of whose turn it is.
func (p *Position) ValidMovesFrom(fromR, fromC int, side Color) [][2]int {
	var moves [][2]int
	for toR := 0; toR < 8; toR++ {
		for toC := 0; toC < 8; toC++ {
			if p.IsLegalMove(fromR, fromC, toR, toC, side) {
				moves = append(moves, [2]int{toR, toC})
			}
		}
	}
	return moves
}
