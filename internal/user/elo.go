package user

import "math"

// InitialElo is the rating assigned at registration.
const InitialElo = 1200

// kFactor is the fixed K for every update.
const kFactor = 32

// expectedScore is the standard Elo expectation of the first rating against
// the second.
func expectedScore(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// WinDelta returns the rating points the winner gains (and the loser loses).
// A win always moves the ratings: a delta that rounds to zero becomes 1.
func WinDelta(winnerElo, loserElo int) int {
	delta := int(math.Round(kFactor * (1 - expectedScore(winnerElo, loserElo))))
	if delta == 0 {
		delta = 1
	}
	return delta
}

// DrawDelta returns white's rating change for a draw; black's is the
// negation. Negative when white out-rates black. A zero delta stays zero.
func DrawDelta(whiteElo, blackElo int) int {
	return int(math.Round(kFactor * (0.5 - expectedScore(whiteElo, blackElo))))
}

// clampRating enforces the floor. There is no ceiling.
func clampRating(elo int) int {
	if elo < 0 {
		return 0
	}
	return elo
}
