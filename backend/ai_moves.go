package main

// legalMoves lists every legal move for the side to move in a fixed order:
// source column, source row, column offset, row offset. It never returns an
// empty slice; a side without moves gets the single pass move.
func legalMoves(board *Board) []Move {
	moves := make([]Move, 0, 32)
	for col := 0; col < Side; col++ {
		for row := 0; row < Side; row++ {
			for dc := -2; dc <= 2; dc++ {
				for dr := -2; dr <= 2; dr++ {
					move := NewMove(col, row, col+dc, row+dr)
					if board.LegalMove(move) {
						moves = append(moves, move)
					}
				}
			}
		}
	}
	if len(moves) == 0 {
		moves = append(moves, PassMove())
	}
	return moves
}
