package main

// IPlayer produces moves for one side. Automated players compute their move
// in ChooseMove; interactive ones hand back whatever the user submitted.
type IPlayer interface {
	IsAuto() bool
	ChooseMove(board *Board) (Move, error)
}

// MoveReporter receives every move a player settles on.
type MoveReporter interface {
	ReportMove(move Move, color PieceColor)
}
