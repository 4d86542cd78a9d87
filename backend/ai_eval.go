package main

// staticScore values a position from red's point of view: +winningValue if
// red has won, -winningValue if blue has won, 0 for a tie, and the piece
// difference otherwise.
func staticScore(board *Board, winningValue int) int {
	switch board.Winner() {
	case OutcomeRed:
		return winningValue
	case OutcomeBlue:
		return -winningValue
	case OutcomeTie:
		return 0
	}
	return board.RedPieces() - board.BluePieces()
}
