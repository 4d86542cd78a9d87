package main

import "sync"

type GameController struct {
	mu   sync.Mutex
	game *Game
}

func NewGameController(settings GameSettings) *GameController {
	return &GameController{game: NewGame(settings)}
}

func (gc *GameController) ApplyHumanMove(move Move) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.game.CurrentPlayerIsHuman() {
		return false, ErrNotHumanTurn.Error()
	}
	return gc.game.TryApplyMove(move)
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Tick()
}

func (gc *GameController) Board() *Board {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Board()
}

func (gc *GameController) Status() GameStatus {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Status()
}

func (gc *GameController) LastMessage() string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.LastMessage()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) History() MoveHistory {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	history := gc.game.History()
	if history.Size() == 0 {
		return HistoryEntry{}, false
	}
	entries := history.All()
	return entries[len(entries)-1], true
}

func (gc *GameController) AiThinking() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.AiThinking()
}

func (gc *GameController) Reset(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Reset(settings)
}

func (gc *GameController) StartGame(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.Reset(settings); err != nil {
		return err
	}
	gc.game.Start()
	return nil
}

// UpdateSettings switches player types and seeds, keeping the position
// unless reset is set.
func (gc *GameController) UpdateSettings(update GameSettings, reset bool) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if reset {
		return gc.game.Reset(update)
	}
	update.Blocks = gc.game.settings.Blocks
	gc.game.settings = update
	gc.game.createPlayers()
	return nil
}

func (gc *GameController) Undo() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.UndoLast()
}

func (gc *GameController) SetBlock(square string) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.SetBlock(square)
}

func (gc *GameController) ResetForConfigChange() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.ResetForConfigChange()
}
