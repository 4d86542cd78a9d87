package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Game struct {
	settings    GameSettings
	board       *Board
	status      GameStatus
	lastMessage string
	history     MoveHistory
	redPlayer   IPlayer
	bluePlayer  IPlayer
	turnStart   time.Time
}

func NewGame(settings GameSettings) *Game {
	g := &Game{}
	if err := g.Reset(settings); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid blocks in game settings")
		settings.Blocks = nil
		_ = g.Reset(settings)
	}
	return g
}

// Reset sets up a fresh board with the configured blocks.
func (g *Game) Reset(settings GameSettings) error {
	board := NewBoard()
	for _, square := range settings.Blocks {
		col, row, err := parseSquare(square)
		if err != nil {
			return errors.WithMessage(err, "block")
		}
		if err := board.SetBlock(col, row); err != nil {
			return err
		}
	}
	g.settings = settings
	g.settings.Blocks = append([]string(nil), settings.Blocks...)
	g.board = board
	g.status = StatusNotStarted
	g.lastMessage = ""
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
	return nil
}

func (g *Game) Start() {
	if g.status != StatusNotStarted {
		return
	}
	g.status = StatusRunning
	g.turnStart = time.Now()
	g.checkGameOver()
}

func (g *Game) Board() *Board {
	return g.board.Clone()
}

func (g *Game) Status() GameStatus {
	return g.status
}

func (g *Game) LastMessage() string {
	return g.lastMessage
}

// History returns a copy that later moves and undos do not affect.
func (g *Game) History() MoveHistory {
	return MoveHistory{entries: g.history.All()}
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// ReportMove logs a move chosen by a player.
func (g *Game) ReportMove(move Move, color PieceColor) {
	log.Info().Stringer("color", color).Stringer("move", move).Msg("move-reported")
}

// SetBlock blocks a square (and its reflections) before the first move.
func (g *Game) SetBlock(square string) error {
	if g.history.Size() > 0 {
		return errors.Wrap(ErrBlockPlacement, "game already started")
	}
	col, row, err := parseSquare(square)
	if err != nil {
		return errors.WithMessage(err, "block")
	}
	if err := g.board.SetBlock(col, row); err != nil {
		return err
	}
	g.settings.Blocks = append(g.settings.Blocks, square)
	g.checkGameOver()
	return nil
}

func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.status != StatusRunning {
		return false, ErrGameNotRunning.Error()
	}
	mover := g.board.WhoseMove()
	player := g.currentPlayer()
	isAiMove := player != nil && player.IsAuto()
	before := g.board.PieceCount(mover)
	if err := g.board.MakeMove(move); err != nil {
		g.lastMessage = err.Error()
		return false, g.lastMessage
	}
	g.lastMessage = ""
	converted := g.board.PieceCount(mover) - before
	if move.IsExtend() {
		converted--
	}
	entry := HistoryEntry{
		Move:      move,
		Player:    mover,
		ElapsedMs: float64(time.Since(g.turnStart).Milliseconds()),
		IsAi:      isAiMove,
		Converted: converted,
	}
	if ai, ok := player.(*AIPlayer); ok && isAiMove && !move.IsPass() {
		stats := ai.LastStats()
		entry.Stats = &stats
	}
	g.history.Push(entry)
	g.logMovePlayed(entry)
	g.checkGameOver()
	g.turnStart = time.Now()
	return true, ""
}

// UndoLast takes back moves until a human is to move again, or a single
// move when no human is playing. In-flight searches are discarded.
func (g *Game) UndoLast() error {
	if g.history.Size() == 0 {
		return ErrNothingToUndo
	}
	for {
		if err := g.board.Undo(); err != nil {
			return err
		}
		g.history.Pop()
		if g.history.Size() == 0 || g.allAuto() || !g.currentPlayer().IsAuto() {
			break
		}
	}
	g.status = StatusRunning
	g.lastMessage = ""
	g.createPlayers()
	g.turnStart = time.Now()
	return nil
}

// Tick advances the game by at most one move. It returns true when a move
// was applied.
func (g *Game) Tick() bool {
	if g.status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if !player.IsAuto() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			applied, _ := g.TryApplyMove(human.TakePendingMove())
			return applied
		}
		return false
	}
	ai, ok := player.(*AIPlayer)
	if !ok {
		move, err := player.ChooseMove(g.board.Clone())
		if err != nil {
			g.fail(err)
			return false
		}
		return g.applyAutoMove(move)
	}
	if ai.HasMoveReady() {
		move, err := ai.TakeMove()
		if err != nil {
			g.fail(err)
			return false
		}
		return g.applyAutoMove(move)
	}
	if !ai.IsThinking() {
		if err := ai.StartThinking(g.board); err != nil && !errors.Is(err, ErrAlreadyThinking) {
			g.fail(err)
		}
	}
	return false
}

func (g *Game) SubmitHumanMove(move Move) bool {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && !player.IsAuto()
}

func (g *Game) AiThinking() bool {
	if ai, ok := g.currentPlayer().(*AIPlayer); ok {
		return ai.IsThinking()
	}
	return false
}

// ResetForConfigChange rebuilds AI players so they pick up the new config.
func (g *Game) ResetForConfigChange() {
	g.createPlayers()
}

func (g *Game) applyAutoMove(move Move) bool {
	applied, reason := g.TryApplyMove(move)
	if !applied {
		// An engine move the board rejects means the enumerator and the
		// board disagree; stop rather than guess.
		g.fail(errors.Wrapf(ErrIllegalMove, "engine proposed %s: %s", move, reason))
	}
	return applied
}

func (g *Game) fail(err error) {
	g.status = StatusError
	g.lastMessage = err.Error()
	log.Error().Err(err).Stringer("to_move", g.board.WhoseMove()).Msg("game stopped")
}

func (g *Game) checkGameOver() {
	if g.status != StatusRunning {
		return
	}
	outcome := g.board.Winner()
	if outcome == OutcomeNone {
		return
	}
	g.status = statusFromOutcome(outcome)
	log.Info().
		Stringer("winner", outcome).
		Int("red", g.board.RedPieces()).
		Int("blue", g.board.BluePieces()).
		Int("moves", g.history.Size()).
		Msg("game-over")
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.board.WhoseMove())
}

func (g *Game) playerForColor(color PieceColor) IPlayer {
	if color == Red {
		return g.redPlayer
	}
	return g.bluePlayer
}

func (g *Game) allAuto() bool {
	return g.settings.RedType == PlayerAI && g.settings.BlueType == PlayerAI
}

func (g *Game) createPlayers() {
	options := AIOptionsFromConfig(GetConfig())
	if g.settings.RedType == PlayerHuman {
		g.redPlayer = NewHumanPlayer(Red)
	} else {
		g.redPlayer = NewAIPlayer(g, Red, g.settings.RedSeed, options)
	}
	if g.settings.BlueType == PlayerHuman {
		g.bluePlayer = NewHumanPlayer(Blue)
	} else {
		g.bluePlayer = NewAIPlayer(g, Blue, g.settings.BlueSeed, options)
	}
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	log.Info().
		Str("red", label(g.settings.RedType)).
		Str("blue", label(g.settings.BlueType)).
		Strs("blocks", g.settings.Blocks).
		Msg("new game")
}

func (g *Game) logMovePlayed(entry HistoryEntry) {
	log.Debug().
		Stringer("color", entry.Player).
		Stringer("move", entry.Move).
		Bool("ai", entry.IsAi).
		Int("converted", entry.Converted).
		Float64("elapsed_ms", entry.ElapsedMs).
		Int("red", g.board.RedPieces()).
		Int("blue", g.board.BluePieces()).
		Msg("move-played")
}
