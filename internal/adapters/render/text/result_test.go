package text

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
)

func scraps(texts ...string) []domain.Scrap {
	out := make([]domain.Scrap, len(texts))
	for i, text := range texts {
		out[i] = domain.Scrap{ID: domain.ScrapID(i + 1), Text: text}
	}
	return out
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	r, err := NewRenderer(domain.DefaultLimits())
	require.NoError(t, err)
	return r
}

func TestNewRendererPluralizesCounts(t *testing.T) {
	r, err := NewRenderer(domain.DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, "1 scrap", r.scraps(1))
	assert.Equal(t, "3 scraps", r.scraps(3))
	assert.Equal(t, "1 player", r.players(1))
	assert.Equal(t, "2 players", r.players(2))

	again, err := NewRenderer(domain.DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "0 scraps", again.scraps(0))
}

func TestRendererResult(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		name   string
		cmd    application.Command
		result application.Result
		want   []string
	}{
		{
			name:   "start",
			cmd:    application.StartCommand{},
			result: application.Result{Summary: &domain.Summary{ID: 2}},
			want:   []string{"Started session #2!", "join 2"},
		},
		{
			name:   "join counts players",
			cmd:    application.JoinCommand{Session: 0},
			result: application.Result{Summary: &domain.Summary{Players: []domain.PlayerSummary{{User: "a"}}}},
			want:   []string{"Joined session #0 with 1 player."},
		},
		{
			name: "add reports rejects",
			cmd:  application.AddCommand{Target: domain.PileBowl},
			result: application.Result{Add: &domain.AddResult{
				Added:    scraps("cat"),
				Rejected: []domain.RejectedScrap{{Text: "42", Err: &domain.ValidationError{Reason: domain.ReasonNumeric, Value: "42"}}},
				PileSize: 1,
			}},
			want: []string{"Added 1 scrap to the bowl (now 1).", "Rejected 1 scrap:", "42 (scrap is a number)"},
		},
		{
			name:   "draw lists scraps and misses",
			cmd:    application.DrawCommand{Source: domain.PileBowl},
			result: application.Result{Draw: &domain.DrawResult{Source: domain.PileBowl, Drawn: scraps("cat", "dog"), NotFound: []string{"emu"}}},
			want:   []string{"Drew 2 scraps from the bowl:", "  - cat", "  - dog", "Couldn't find: emu"},
		},
		{
			name:   "empty hand",
			cmd:    application.HandCommand{},
			result: application.Result{},
			want:   []string{"Your hand is empty."},
		},
		{
			name:   "see discard",
			cmd:    application.SeeCommand{Pile: domain.PileDiscard},
			result: application.Result{Scraps: scraps("owl")},
			want:   []string{"The discard holds 1 scrap:", "  - owl"},
		},
		{
			name:   "move destroy",
			cmd:    application.MoveCommand{Kind: domain.MoveDestroy},
			result: application.Result{Move: &domain.MoveResult{Kind: domain.MoveDestroy, Moved: scraps("a", "b", "c")}},
			want:   []string{"Destroyed 3 scraps:"},
		},
		{
			name:   "leave ends session",
			cmd:    application.LeaveCommand{},
			result: application.Result{Leave: &domain.LeaveResult{Forfeited: scraps("x"), Ended: true}},
			want:   []string{"You left the session.", "Your 1 scrap left with you.", "has ended"},
		},
		{
			name:   "leave hands over",
			cmd:    application.LeaveCommand{},
			result: application.Result{Leave: &domain.LeaveResult{NewCreator: "bob"}},
			want:   []string{"bob is the new creator."},
		},
		{
			name:   "ban removes",
			cmd:    application.BanCommand{Target: "bob"},
			result: application.Result{User: "bob", Ban: &domain.BanResult{Removed: true, Forfeited: scraps("a", "b")}},
			want:   []string{"Banned bob.", "2 scraps left the game."},
		},
		{
			name: "take",
			cmd:  application.TransferCommand{Direction: domain.TransferTake, Target: "bob"},
			result: application.Result{Transfer: &domain.TransferPlan{
				Direction: domain.TransferTake, From: "bob", To: "alice", Scraps: scraps("cat"),
			}},
			want: []string{"Took 1 scrap from bob:", "  - cat"},
		},
		{
			name: "pass with nothing matched",
			cmd:  application.TransferCommand{Direction: domain.TransferPass, Target: "bob"},
			result: application.Result{Transfer: &domain.TransferPlan{
				Direction: domain.TransferPass, NotFound: []string{"emu"},
			}},
			want: []string{"Nothing to pass.", "Couldn't find: emu"},
		},
		{
			name:   "recall",
			cmd:    application.RecallCommand{},
			result: application.Result{Count: 4},
			want:   []string{"Returned 4 scraps from every hand to the bowl."},
		},
		{
			name:   "private show",
			cmd:    application.ShowHandCommand{Target: "bob"},
			result: application.Result{Scraps: scraps("a")},
			want:   []string{"Showed 1 scrap to bob."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := r.Result(tc.cmd, tc.result)
			require.NoError(t, err)
			for _, want := range tc.want {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestRendererResultInfoRendersBoard(t *testing.T) {
	r := newTestRenderer(t)

	output, err := r.Result(application.InfoCommand{}, application.Result{Summary: &domain.Summary{
		ID: 1, Creator: "alice", Players: []domain.PlayerSummary{{User: "alice", HandSize: 1}}, Total: 1,
	}})

	require.NoError(t, err)
	assert.Contains(t, output, "Session #1")
	assert.Contains(t, output, "1/999")
}

func TestRendererError(t *testing.T) {
	r := newTestRenderer(t)

	assert.Equal(t, "Invalid input: scrap is a number: 7.", r.Error(&domain.ValidationError{Reason: domain.ReasonNumeric, Value: "7"}))
	assert.Equal(t, "Only the session creator can do that!", r.Error(domain.ErrNotCreator))
	assert.Equal(t, "Already in a session! (session #0: already in a session)",
		r.Error(fmt.Errorf("session #%d: %w", 0, domain.ErrAlreadySeated)))
	assert.Contains(t, r.Error(domain.ErrNotInSession), "Start one with start")
	assert.Equal(t, "Oops, something went wrong.", r.Error(fmt.Errorf("boom")))
}

func TestRendererNotice(t *testing.T) {
	r := newTestRenderer(t)

	output := r.Notice(ports.Notice{
		To:      ports.Address{User: "bob"},
		Text:    "alice passed you 2 scrap(s):",
		Entries: []string{"cat", "dog"},
	})
	assert.Equal(t, "@bob: alice passed you 2 scrap(s):\n  - cat\n  - dog\n", output)

	output = r.Notice(ports.Notice{To: ports.Address{Channel: "table"}, Text: "hi"})
	assert.Equal(t, "#table: hi\n", output)
}
