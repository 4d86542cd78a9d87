package main

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

const seedSalt = 0x9e3779b97f4a7c15

type AIOptions struct {
	Depth          int
	WinningValue   int
	LogSearchStats bool
}

func AIOptionsFromConfig(cfg Config) AIOptions {
	return AIOptions{
		Depth:          cfg.AiDepth,
		WinningValue:   cfg.AiWinningValue,
		LogSearchStats: cfg.AiLogSearchStats,
	}
}

// AIPlayer picks moves for one colour with a fixed-depth alpha-beta search.
type AIPlayer struct {
	reporter MoveReporter
	color    PieceColor
	seed     int64
	rng      *rand.Rand
	options  AIOptions

	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	readyMove  Move
	readyErr   error
	lastStats  SearchStats
}

// NewAIPlayer creates a player for color that reports its moves to reporter.
// Identical seeds give identical random streams.
func NewAIPlayer(reporter MoveReporter, color PieceColor, seed int64, options AIOptions) *AIPlayer {
	return &AIPlayer{
		reporter: reporter,
		color:    color,
		seed:     seed,
		rng:      rand.New(rand.NewPCG(uint64(seed), uint64(seed)^seedSalt)),
		options:  options,
	}
}

func (a *AIPlayer) IsAuto() bool {
	return true
}

func (a *AIPlayer) Color() PieceColor {
	return a.color
}

func (a *AIPlayer) Seed() int64 {
	return a.seed
}

// Rand is the player's seeded source. Move selection does not draw from it.
func (a *AIPlayer) Rand() *rand.Rand {
	return a.rng
}

// ChooseMove finds a move for the current position and reports it.
func (a *AIPlayer) ChooseMove(board *Board) (Move, error) {
	move, _, err := a.FindMove(board)
	if err != nil {
		return Move{}, err
	}
	if a.reporter != nil {
		a.reporter.ReportMove(move, a.color)
	}
	return move, nil
}

// FindMove passes without searching when a.color has no legal move.
// Otherwise it searches a private copy of board, so the caller's board is
// never touched. Stats are nil when no search ran.
func (a *AIPlayer) FindMove(board *Board) (Move, *SearchStats, error) {
	if !board.CanMove(a.color) {
		return PassMove(), nil, nil
	}
	snapshot := board.Clone()
	sense := 1
	if a.color != Red {
		sense = -1
	}
	stats := &SearchStats{}
	result, err := runSearch(snapshot, a.options.Depth, a.options.WinningValue, sense, stats)
	if err != nil {
		return Move{}, stats, errors.WithMessagef(err, "%s search", a.color)
	}
	if !result.HasMove {
		return Move{}, stats, errors.Wrapf(ErrInvariantViolation, "%s root search at depth %d recorded no move", a.color, a.options.Depth)
	}
	if a.options.LogSearchStats {
		logSearchStats("choose", a.color, result.Move, stats)
	}
	a.moveMutex.Lock()
	a.lastStats = *stats
	a.moveMutex.Unlock()
	return result.Move, stats, nil
}

// StartThinking runs ChooseMove on a worker goroutine against a copy of
// board. Poll HasMoveReady and collect the result with TakeMove.
func (a *AIPlayer) StartThinking(board *Board) error {
	if a.thinking.Load() {
		return ErrAlreadyThinking
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)

	boardCopy := board.Clone()
	done := make(chan struct{})
	a.workerDone = done
	go func() {
		defer close(done)
		move, err := a.ChooseMove(boardCopy)
		a.moveMutex.Lock()
		a.readyMove = move
		a.readyErr = err
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
	return nil
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() (Move, error) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove, a.readyErr
}

func (a *AIPlayer) LastStats() SearchStats {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	return a.lastStats
}
