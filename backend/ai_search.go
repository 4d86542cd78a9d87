package main

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// infinity bounds every reachable score, including winningValue + depth.
const infinity = math.MaxInt

type SearchStats struct {
	Depth   int           `json:"depth"`
	Nodes   int64         `json:"nodes"`
	Leaves  int64         `json:"leaves"`
	Cutoffs int64         `json:"cutoffs"`
	Value   int           `json:"value"`
	Start   time.Time     `json:"-"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type searchResult struct {
	Value   int
	Move    Move
	HasMove bool
}

type searcher struct {
	winningValue int
	stats        *SearchStats
}

func newSearcher(winningValue int, stats *SearchStats) *searcher {
	if stats == nil {
		stats = &SearchStats{}
	}
	return &searcher{winningValue: winningValue, stats: stats}
}

// minMax searches board to the given depth and returns its value. With
// sense == 1 it maximizes (red), with sense == -1 it minimizes (blue). Only
// the frame with saveMove set reports its best move; the base case never
// does. The board is mutated in place and restored before returning.
func (s *searcher) minMax(board *Board, depth int, saveMove bool, sense int, alpha, beta int) (searchResult, error) {
	// Wins found with more depth left are reached sooner, so they score higher.
	if depth == 0 || board.Winner() != OutcomeNone {
		s.stats.Leaves++
		return searchResult{Value: staticScore(board, s.winningValue+depth)}, nil
	}
	s.stats.Nodes++

	moves := legalMoves(board)
	if len(moves) == 0 {
		return searchResult{}, errors.Wrap(ErrInvariantViolation, "empty move list for a live position")
	}

	bestValue := -infinity
	if sense < 0 {
		bestValue = infinity
	}
	var bestMove Move
	found := false
	for _, move := range moves {
		value, err := s.tryMove(board, move, func() (int, error) {
			child, err := s.minMax(board, depth-1, false, -sense, alpha, beta)
			return child.Value, err
		})
		if err != nil {
			return searchResult{}, err
		}
		if sense > 0 {
			alpha = max(alpha, value)
			if value > bestValue {
				bestValue, bestMove, found = value, move, true
			}
		} else {
			beta = min(beta, value)
			if value < bestValue {
				bestValue, bestMove, found = value, move, true
			}
		}
		if alpha >= beta {
			s.stats.Cutoffs++
			break
		}
	}

	result := searchResult{Value: bestValue}
	if saveMove {
		if !found {
			return searchResult{}, errors.Wrapf(ErrInvariantViolation, "no move recorded at depth %d", depth)
		}
		result.Move, result.HasMove = bestMove, true
	}
	return result, nil
}

// tryMove applies move, evaluates fn on the resulting position and takes the
// move back on every exit path.
func (s *searcher) tryMove(board *Board, move Move, fn func() (int, error)) (value int, err error) {
	if err := board.MakeMove(move); err != nil {
		return 0, errors.WithMessage(err, "search")
	}
	defer func() {
		if undoErr := board.Undo(); undoErr != nil && err == nil {
			err = errors.Wrapf(ErrInvariantViolation, "undo %s: %v", move, undoErr)
		}
	}()
	return fn()
}

// searchRoot runs a full-window search from the root and records its best move.
func searchRoot(board *Board, depth, winningValue, sense int, stats *SearchStats) (searchResult, error) {
	s := newSearcher(winningValue, stats)
	s.stats.Depth = depth
	s.stats.Start = time.Now()
	result, err := s.minMax(board, depth, true, sense, -infinity, infinity)
	s.stats.Elapsed = time.Since(s.stats.Start)
	s.stats.Value = result.Value
	return result, err
}

// runSearch is swapped out by tests that need to observe search calls.
var runSearch = searchRoot
