package main

type PieceColor int

type Outcome int

type GameStatus int

const (
	Empty PieceColor = iota
	Red
	Blue
	Blocked
)

const (
	OutcomeNone Outcome = iota
	OutcomeRed
	OutcomeBlue
	OutcomeTie
)

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusRedWon
	StatusBlueWon
	StatusDraw
	StatusError
)

// Opposite returns the other playing side. Empty and Blocked map to themselves.
func (c PieceColor) Opposite() PieceColor {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return c
	}
}

func (c PieceColor) IsPiece() bool {
	return c == Red || c == Blue
}

func (c PieceColor) String() string {
	switch c {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	case Blocked:
		return "Blocked"
	default:
		return "Empty"
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeRed:
		return "red"
	case OutcomeBlue:
		return "blue"
	case OutcomeTie:
		return "tie"
	default:
		return "none"
	}
}

func statusFromOutcome(outcome Outcome) GameStatus {
	switch outcome {
	case OutcomeRed:
		return StatusRedWon
	case OutcomeBlue:
		return StatusBlueWon
	case OutcomeTie:
		return StatusDraw
	default:
		return StatusRunning
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusRedWon:
		return "red_won"
	case StatusBlueWon:
		return "blue_won"
	case StatusDraw:
		return "draw"
	case StatusError:
		return "error"
	default:
		return "running"
	}
}

func colorToInt(color PieceColor) int {
	switch color {
	case Red:
		return 1
	case Blue:
		return 2
	case Blocked:
		return 3
	default:
		return 0
	}
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusRedWon:
		return 1
	case StatusBlueWon:
		return 2
	default:
		return 0
	}
}
