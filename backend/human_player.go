package main

import "sync"

type HumanPlayer struct {
	mu          sync.Mutex
	color       PieceColor
	pending     bool
	pendingMove Move
}

func NewHumanPlayer(color PieceColor) *HumanPlayer {
	return &HumanPlayer{color: color}
}

func (h *HumanPlayer) IsAuto() bool {
	return false
}

// ChooseMove hands out the submitted move, or ErrNoPendingMove.
func (h *HumanPlayer) ChooseMove(*Board) (Move, error) {
	if !h.HasPendingMove() {
		return Move{}, ErrNoPendingMove
	}
	return h.TakePendingMove(), nil
}

func (h *HumanPlayer) SetPendingMove(move Move) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingMove = move
	h.pending = true
}

func (h *HumanPlayer) HasPendingMove() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending
}

func (h *HumanPlayer) TakePendingMove() Move {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = false
	return h.pendingMove
}
