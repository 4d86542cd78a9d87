package main

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickUntil(t *testing.T, controller *GameController, timeout time.Duration, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !done() {
		require.True(t, time.Now().Before(deadline), "timed out ticking the game")
		controller.Tick()
		time.Sleep(time.Millisecond)
	}
}

func TestAIVsAIPlaysToCompletion(t *testing.T) {
	withShallowAI(t)
	settings := GameSettings{RedType: PlayerAI, BlueType: PlayerAI, RedSeed: 3, BlueSeed: 4}
	controller := NewGameController(settings)
	require.NoError(t, controller.StartGame(settings))

	tickUntil(t, controller, 30*time.Second, func() bool {
		return controller.Status() != StatusRunning
	})

	status := controller.Status()
	assert.Contains(t, []GameStatus{StatusRedWon, StatusBlueWon, StatusDraw}, status, controller.LastMessage())
	board := controller.Board()
	assert.Equal(t, statusFromOutcome(board.Winner()), status)
	assert.Equal(t, board.MoveCount(), controller.History().Size())
	for _, entry := range controller.History().All() {
		assert.True(t, entry.IsAi)
	}
}

func TestHumanMoveRejectedOutsideTurn(t *testing.T) {
	controller := NewGameController(DefaultGameSettings())

	applied, reason := controller.ApplyHumanMove(mustMove(t, "a7-b6"))
	assert.False(t, applied)
	assert.Equal(t, ErrGameNotRunning.Error(), reason)

	require.NoError(t, controller.StartGame(DefaultGameSettings()))
	applied, reason = controller.ApplyHumanMove(mustMove(t, "a7-a4"))
	assert.False(t, applied)
	assert.Contains(t, reason, ErrIllegalMove.Error())
	assert.Equal(t, reason, controller.LastMessage())

	applied, _ = controller.ApplyHumanMove(mustMove(t, "a7-b6"))
	require.True(t, applied)
	applied, reason = controller.ApplyHumanMove(mustMove(t, "a1-b2"))
	assert.False(t, applied, "blue is the AI")
	assert.Equal(t, ErrNotHumanTurn.Error(), reason)
}

func TestUndoReturnsToHumanTurn(t *testing.T) {
	withShallowAI(t)
	controller := NewGameController(DefaultGameSettings())
	require.NoError(t, controller.StartGame(DefaultGameSettings()))
	assert.True(t, errors.Is(controller.Undo(), ErrNothingToUndo))

	applied, reason := controller.ApplyHumanMove(mustMove(t, "a7-b6"))
	require.True(t, applied, reason)
	tickUntil(t, controller, 5*time.Second, func() bool {
		return controller.History().Size() == 2
	})
	entry, ok := controller.LatestHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, Blue, entry.Player)
	assert.NotNil(t, entry.Stats)

	require.NoError(t, controller.Undo())
	assert.Equal(t, 0, controller.History().Size())
	assert.Equal(t, NewBoard().positionKey(), controller.Board().positionKey())
	assert.Equal(t, StatusRunning, controller.Status())
}

func TestSetBlockBeforeFirstMove(t *testing.T) {
	settings := GameSettings{RedType: PlayerHuman, BlueType: PlayerHuman}
	controller := NewGameController(settings)
	require.NoError(t, controller.SetBlock("c3"))

	board := controller.Board()
	assert.Equal(t, Blocked, board.At(2, 2))
	assert.Equal(t, Blocked, board.At(4, 4))
	assert.Equal(t, []string{"c3"}, controller.Settings().Blocks)

	assert.Error(t, controller.SetBlock("z9"))
	assert.True(t, errors.Is(controller.SetBlock("a1"), ErrBlockPlacement))

	require.NoError(t, controller.StartGame(controller.Settings()))
	assert.Equal(t, Blocked, controller.Board().At(4, 2), "restart keeps blocks")
	applied, _ := controller.ApplyHumanMove(mustMove(t, "a7-b6"))
	require.True(t, applied)
	assert.True(t, errors.Is(controller.SetBlock("d2"), ErrBlockPlacement))
}

func TestResetRejectsBadBlocks(t *testing.T) {
	controller := NewGameController(DefaultGameSettings())
	settings := DefaultGameSettings()
	settings.Blocks = []string{"a1"}
	err := controller.StartGame(settings)
	assert.True(t, errors.Is(err, ErrBlockPlacement))
}

func TestAIFailureStopsGame(t *testing.T) {
	stubSearch(t, func(*Board, int, int, int, *SearchStats) (searchResult, error) {
		return searchResult{}, nil
	})
	settings := GameSettings{RedType: PlayerAI, BlueType: PlayerHuman}
	controller := NewGameController(settings)
	require.NoError(t, controller.StartGame(settings))

	tickUntil(t, controller, 5*time.Second, func() bool {
		return controller.Status() == StatusError
	})
	assert.Contains(t, controller.LastMessage(), ErrInvariantViolation.Error())
	assert.Equal(t, 0, controller.History().Size())
}
