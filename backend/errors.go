package main

import "github.com/pkg/errors"

var (
	// ErrInvariantViolation marks a broken search contract: the root search
	// finished without a move, or move enumeration came back empty.
	ErrInvariantViolation = errors.New("search invariant violated")
	// ErrIllegalMove is returned by the board for any move it rejects.
	ErrIllegalMove = errors.New("illegal move")

	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrGameNotRunning  = errors.New("game not running")
	ErrNotHumanTurn    = errors.New("not human turn")
	ErrNoPendingMove   = errors.New("no pending move")
	ErrBlockPlacement  = errors.New("cannot place block")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrAlreadyThinking = errors.New("already thinking")
)
