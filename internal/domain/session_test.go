package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, players ...UserID) *Session {
	t.Helper()

	s := NewSession(0, "alice", "table", DefaultLimits(), t0)
	for _, p := range players {
		require.NoError(t, s.Join(p))
	}
	return s
}

func requireConsistent(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.CheckInvariants())
}

func TestSessionDrawCountScenario(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	_, err := s.AddToBowl("alice", []string{"apple", "banana"})
	require.NoError(t, err)

	res, err := s.Draw("alice", PileBowl, DrawSpec{Count: 2}, seeded())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apple", "banana"}, Texts(res.Drawn))
	requireConsistent(t, s)

	_, err = s.Draw("alice", PileBowl, DrawSpec{Count: 1}, seeded())
	require.ErrorIs(t, err, ErrInsufficientSupply)

	hand, err := s.Hand("alice")
	require.NoError(t, err)
	assert.Len(t, hand, 2)
	bowl, err := s.Pile(PileBowl)
	require.NoError(t, err)
	assert.Empty(t, bowl)
	assert.Equal(t, 2, s.Total())
	requireConsistent(t, s)
}

func TestSessionDrawByValueFromDiscard(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	_, err := s.AddToHand("alice", []string{"Moon", "sun"})
	require.NoError(t, err)
	_, err = s.MoveHand("alice", MoveDiscard)
	require.NoError(t, err)

	res, err := s.Draw("alice", PileDiscard, DrawSpec{Values: []string{"moon", "star"}}, seeded())
	require.NoError(t, err)
	assert.True(t, res.ByValue)
	assert.Equal(t, []string{"Moon"}, Texts(res.Drawn))
	assert.Equal(t, []string{"star"}, res.NotFound)

	hand, _ := s.Hand("alice")
	assert.Equal(t, []string{"Moon"}, Texts(hand))
	requireConsistent(t, s)
}

func TestSessionAddCeilingRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxTotalScraps = 3
	s := NewSession(1, "alice", "table", limits, t0)
	_, err := s.AddToBowl("alice", []string{"a", "b"})
	require.NoError(t, err)

	_, err = s.AddToBowl("alice", []string{"c", "d"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, s.Total())
	requireConsistent(t, s)
}

func TestSessionAddReportsRejected(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	res, err := s.AddToBowl("alice", []string{" pear, ", "7", "<#123>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pear"}, Texts(res.Added))
	assert.Len(t, res.Rejected, 2)
	assert.Equal(t, 1, s.Total())
	requireConsistent(t, s)
}

func TestSessionJoinRules(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxPlayers = 2
	s := NewSession(0, "alice", "table", limits, t0)

	require.NoError(t, s.Join("bob"))
	assert.ErrorIs(t, s.Join("bob"), ErrAlreadySeated)
	assert.ErrorIs(t, s.Join("carol"), ErrSessionFull)
}

func TestSessionBanSeatedPlayerForfeitsHand(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("bob", []string{"x", "y"})
	require.NoError(t, err)
	_, err = s.AddToBowl("alice", []string{"z"})
	require.NoError(t, err)

	res, err := s.Ban("alice", "bob", "bot")
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Len(t, res.Forfeited, 2)
	assert.False(t, s.IsPlayer("bob"))
	assert.Equal(t, 1, s.Total())
	requireConsistent(t, s)

	assert.ErrorIs(t, s.Join("bob"), ErrBanned)

	_, err = s.Ban("alice", "bob", "bot")
	assert.ErrorIs(t, err, ErrAlreadyBanned)
}

func TestSessionBanGuards(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")

	_, err := s.Ban("bob", "alice", "bot")
	assert.ErrorIs(t, err, ErrNotCreator)
	_, err = s.Ban("alice", "alice", "bot")
	assert.ErrorIs(t, err, ErrSelfTarget)
	_, err = s.Ban("alice", "bot", "bot")
	assert.ErrorIs(t, err, ErrSelfTarget)

	res, err := s.Ban("alice", "mallory", "bot")
	require.NoError(t, err)
	assert.False(t, res.Removed)

	assert.ErrorIs(t, s.Unban("alice", "carol", "bot"), ErrNotFound)
	require.NoError(t, s.Unban("alice", "mallory", "bot"))
	assert.False(t, s.IsBanned("mallory"))
}

func TestSessionLeave(t *testing.T) {
	t.Parallel()

	t.Run("creator names successor", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t, "bob", "carol")
		_, err := s.AddToHand("alice", []string{"kept?"})
		require.NoError(t, err)

		res, err := s.Leave("alice", "carol", seeded())
		require.NoError(t, err)
		assert.Equal(t, UserID("carol"), res.NewCreator)
		assert.Equal(t, UserID("carol"), s.Creator())
		assert.Len(t, res.Forfeited, 1)
		assert.Equal(t, 0, s.Total())
		requireConsistent(t, s)
	})

	t.Run("random successor is a remaining player", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t, "bob")
		res, err := s.Leave("alice", "", seeded())
		require.NoError(t, err)
		assert.Equal(t, UserID("bob"), res.NewCreator)
		assert.False(t, res.Ended)
	})

	t.Run("invalid successors", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t, "bob")
		_, err := s.Leave("alice", "alice", seeded())
		assert.ErrorIs(t, err, ErrSelfTarget)
		_, err = s.Leave("alice", "zed", seeded())
		assert.ErrorIs(t, err, ErrNotInSession)
		assert.True(t, s.IsPlayer("alice"))
	})

	t.Run("last player ends session", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t)
		res, err := s.Leave("alice", "", seeded())
		require.NoError(t, err)
		assert.True(t, res.Ended)
	})

	t.Run("non-creator keeps creator", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t, "bob")
		res, err := s.Leave("bob", "", seeded())
		require.NoError(t, err)
		assert.Empty(t, res.NewCreator)
		assert.Equal(t, UserID("alice"), s.Creator())
	})
}

func TestSessionEdit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("bob", []string{"cat"})
	require.NoError(t, err)
	_, err = s.AddToBowl("alice", []string{"dog"})
	require.NoError(t, err)

	res, err := s.Edit("bob", "cat", "kitten")
	require.NoError(t, err)
	assert.Equal(t, PileHand, res.Scope)
	hand, _ := s.Hand("bob")
	assert.Equal(t, []string{"kitten"}, Texts(hand))

	_, err = s.Edit("bob", "dog", "puppy")
	assert.ErrorIs(t, err, ErrNotCreator)

	res, err = s.Edit("alice", "dog", "puppy")
	require.NoError(t, err)
	assert.Equal(t, PileBowl, res.Scope)

	_, err = s.Edit("alice", "nothing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Edit("bob", "kitten", "12")
	assert.ErrorIs(t, err, ErrValidation)
	requireConsistent(t, s)
}

func TestSessionMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind        MoveKind
		wantBowl    int
		wantDiscard int
		wantTotal   int
	}{
		{kind: MoveDiscard, wantDiscard: 1, wantTotal: 2},
		{kind: MoveReturn, wantBowl: 1, wantTotal: 2},
		{kind: MoveDestroy, wantTotal: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			s := newTestSession(t)
			_, err := s.AddToHand("alice", []string{"keep", "go"})
			require.NoError(t, err)

			res, err := s.Move("alice", tc.kind, []string{"GO", "absent"})
			require.NoError(t, err)
			assert.Equal(t, []string{"go"}, Texts(res.Moved))
			assert.Equal(t, []string{"absent"}, res.NotFound)

			sum := s.Summary()
			assert.Equal(t, tc.wantBowl, sum.Bowl)
			assert.Equal(t, tc.wantDiscard, sum.Discard)
			assert.Equal(t, tc.wantTotal, sum.Total)
			requireConsistent(t, s)
		})
	}
}

func TestSessionMoveHand(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	_, err := s.MoveHand("alice", MoveReturn)
	require.ErrorIs(t, err, ErrInsufficientSupply)

	_, err = s.AddToHand("alice", []string{"a", "b", "c"})
	require.NoError(t, err)
	res, err := s.MoveHand("alice", MoveDestroy)
	require.NoError(t, err)
	assert.Len(t, res.Moved, 3)
	assert.Equal(t, 0, s.Total())
	requireConsistent(t, s)
}

func TestSessionPeek(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	_, err := s.AddToBowl("alice", []string{"a", "b"})
	require.NoError(t, err)

	got, err := s.Peek("alice", 0, seeded())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Peek("alice", 2, seeded())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, s.Summary().Bowl)

	_, err = s.Peek("alice", 3, seeded())
	assert.ErrorIs(t, err, ErrInsufficientSupply)
}

func TestSessionStageTransferDoesNotMutate(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("alice", []string{"x", "y"})
	require.NoError(t, err)

	plan, err := s.StageTransfer("alice", "bob", TransferPass, []string{"x"}, seeded())
	require.NoError(t, err)
	assert.Equal(t, UserID("alice"), plan.From)
	assert.Equal(t, UserID("bob"), plan.To)
	assert.Equal(t, []string{"x"}, Texts(plan.Scraps))

	hand, _ := s.Hand("alice")
	assert.Equal(t, []string{"x", "y"}, Texts(hand))
	bobHand, _ := s.Hand("bob")
	assert.Empty(t, bobHand)
	assert.Equal(t, 2, s.Total())
}

func TestSessionTransferCommit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("bob", []string{"x", "y", "z"})
	require.NoError(t, err)

	plan, err := s.StageTransfer("alice", "bob", TransferTake, []string{"2"}, seeded())
	require.NoError(t, err)
	assert.True(t, plan.Random)
	assert.Len(t, plan.Scraps, 2)

	require.NoError(t, s.CommitTransfer(plan))
	aliceHand, _ := s.Hand("alice")
	bobHand, _ := s.Hand("bob")
	assert.Len(t, aliceHand, 2)
	assert.Len(t, bobHand, 1)
	requireConsistent(t, s)
}

func TestSessionTransferCommitDetectsStalePlan(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("alice", []string{"x", "y"})
	require.NoError(t, err)

	plan, err := s.StageTransfer("alice", "bob", TransferPass, []string{"x", "y"}, seeded())
	require.NoError(t, err)
	_, err = s.Move("alice", MoveDiscard, []string{"y"})
	require.NoError(t, err)

	require.ErrorIs(t, s.CommitTransfer(plan), ErrNotFound)
	hand, _ := s.Hand("alice")
	assert.Equal(t, []string{"x"}, Texts(hand))
	requireConsistent(t, s)
}

func TestSessionStageTransferGuards(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToHand("bob", []string{"x"})
	require.NoError(t, err)

	_, err = s.StageTransfer("alice", "alice", TransferPass, []string{"x"}, seeded())
	assert.ErrorIs(t, err, ErrSelfTarget)
	_, err = s.StageTransfer("alice", "zed", TransferPass, []string{"x"}, seeded())
	assert.ErrorIs(t, err, ErrNotInSession)
	_, err = s.StageTransfer("alice", "bob", TransferTake, []string{"5"}, seeded())
	assert.ErrorIs(t, err, ErrInsufficientSupply)

	plan, err := s.StageTransfer("alice", "bob", TransferTake, []string{"nope", "1"}, seeded())
	require.NoError(t, err)
	assert.Empty(t, plan.Scraps)
	assert.Equal(t, []string{"nope", "1"}, plan.NotFound)
}

func TestSessionRecallThenShuffleRestoresBowl(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToBowl("alice", []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	_, err = s.Draw("alice", PileBowl, DrawSpec{Count: 2}, seeded())
	require.NoError(t, err)
	_, err = s.Draw("bob", PileBowl, DrawSpec{Count: 2}, seeded())
	require.NoError(t, err)
	_, err = s.MoveHand("bob", MoveDiscard)
	require.NoError(t, err)

	_, err = s.RecallHands("bob")
	require.ErrorIs(t, err, ErrNotCreator)

	_, err = s.RecallHands("alice")
	require.NoError(t, err)
	_, err = s.ShuffleDiscard("alice")
	require.NoError(t, err)

	bowl, _ := s.Pile(PileBowl)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, Texts(bowl))
	assert.Equal(t, 5, s.Total())
	requireConsistent(t, s)
}

func TestSessionResetRecountsTotal(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "bob")
	_, err := s.AddToBowl("alice", []string{"a", "b"})
	require.NoError(t, err)
	_, err = s.AddToHand("bob", []string{"c"})
	require.NoError(t, err)

	require.NoError(t, s.Reset("alice", ResetBowl))
	assert.Equal(t, 1, s.Total())
	requireConsistent(t, s)

	require.NoError(t, s.Reset("alice", ResetAll))
	assert.Equal(t, 0, s.Total())
	assert.ErrorIs(t, s.Reset("bob", ResetAll), ErrNotCreator)
}

func TestParseDrawSpec(t *testing.T) {
	t.Parallel()

	spec, err := ParseDrawSpec(nil)
	require.NoError(t, err)
	assert.Equal(t, DrawSpec{Count: 1}, spec)

	spec, err = ParseDrawSpec([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Count)

	spec, err = ParseDrawSpec([]string{"apple", "pie"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pie"}, spec.Values)

	_, err = ParseDrawSpec([]string{"-1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseScopes(t *testing.T) {
	t.Parallel()

	scope, err := ParseResetScope("Graveyard")
	require.NoError(t, err)
	assert.Equal(t, ResetDiscard, scope)

	_, err = ParseResetScope("everything")
	assert.ErrorIs(t, err, ErrValidation)

	kind, err := ParsePileKind("deck")
	require.NoError(t, err)
	assert.Equal(t, PileBowl, kind)
}
