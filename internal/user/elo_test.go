package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinDelta(t *testing.T) {
	cases := []struct {
		name               string
		winnerElo, loserElo int
		want               int
	}{
		{"equal ratings", 1200, 1200, 16},
		{"underdog wins big", 1200, 2000, 32},
		{"slight favorite", 1290, 1250, 14},
		{"huge favorite rounds to zero, forced to one", 2800, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WinDelta(tc.winnerElo, tc.loserElo))
		})
	}
}

func TestDrawDelta(t *testing.T) {
	// The higher-rated side gives up points on a draw.
	assert.Equal(t, 0, DrawDelta(1200, 1200))
	assert.Equal(t, -8, DrawDelta(1400, 1200))
	assert.Equal(t, 8, DrawDelta(1200, 1400))
}

func TestExpectedScoreSymmetry(t *testing.T) {
	a := expectedScore(1300, 1500)
	b := expectedScore(1500, 1300)
	assert.InDelta(t, 1.0, a+b, 1e-9)
}
