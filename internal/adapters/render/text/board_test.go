package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/fishbowl/internal/domain"
)

func TestRenderBoard(t *testing.T) {
	output, err := RenderBoard(domain.Summary{
		ID:          3,
		Creator:     "alice",
		HomeChannel: "table",
		Players: []domain.PlayerSummary{
			{User: "alice", HandSize: 2},
			{User: "bob", HandSize: 0},
		},
		Banned:  []domain.UserID{"mallory"},
		Bowl:    5,
		Discard: 1,
		Total:   8,
	}, domain.Limits{MaxScrapLength: 100, MaxTotalScraps: 16, MaxPlayers: 4})

	require.NoError(t, err)
	assert.Contains(t, output, "Session #3")
	assert.Contains(t, output, "creator: alice")
	assert.Contains(t, output, "home: #table")
	assert.Contains(t, output, "player")
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "bob")
	assert.Contains(t, output, "bowl: 5  discard: 1  in hands: 2")
	assert.Contains(t, output, "8/16")
	assert.Contains(t, output, "[============------------]")
	assert.Contains(t, output, "banned: mallory")
}

func TestRenderBoardWithoutBans(t *testing.T) {
	output, err := RenderBoard(domain.Summary{
		Creator: "alice",
		Players: []domain.PlayerSummary{{User: "alice"}},
	}, domain.DefaultLimits())

	require.NoError(t, err)
	assert.Contains(t, output, "Session #0")
	assert.Contains(t, output, "0/999")
	assert.NotContains(t, output, "banned")
}

func TestRenderCapacityBarClamps(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "[====]", renderCapacityBar(150, 4, s))
	assert.Equal(t, "[----]", renderCapacityBar(-5, 4, s))
	assert.Equal(t, "", renderCapacityBar(50, 0, s))
}
