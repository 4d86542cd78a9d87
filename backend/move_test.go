package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoveRoundTrip(t *testing.T) {
	move, err := ParseMove("a1-b2")
	require.NoError(t, err)
	assert.Equal(t, NewMove(0, 0, 1, 1), move)
	assert.Equal(t, "a1-b2", move.String())
	assert.True(t, move.IsExtend())

	move, err = ParseMove(" C3-E5 ")
	require.NoError(t, err)
	assert.Equal(t, "c3-e5", move.String())
	assert.True(t, move.IsJump())
}

func TestParseMovePass(t *testing.T) {
	move, err := ParseMove("-")
	require.NoError(t, err)
	assert.True(t, move.IsPass())
	assert.Equal(t, "-", move.String())
	assert.True(t, move.Equals(PassMove()))
	assert.False(t, move.IsJump())
	assert.False(t, move.IsExtend())
}

func TestParseMoveRejectsMalformedInput(t *testing.T) {
	for _, text := range []string{"", "a1b2", "a1-b2-c3", "h1-a1", "a0-a1", "a1-a"} {
		_, err := ParseMove(text)
		assert.Error(t, err, text)
	}
}

func TestMoveDistance(t *testing.T) {
	assert.Equal(t, 1, NewMove(3, 3, 4, 4).Distance())
	assert.Equal(t, 2, NewMove(3, 3, 5, 2).Distance())
	assert.Equal(t, 3, NewMove(0, 0, 3, 1).Distance())
	assert.False(t, NewMove(0, 0, 3, 1).IsJump())
}
