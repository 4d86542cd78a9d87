package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Move is a piece relocation between two squares, or a pass. Coordinates are
// zero based: column 0 is 'a', row 0 is '1'.
type Move struct {
	FromCol int  `json:"from_col"`
	FromRow int  `json:"from_row"`
	ToCol   int  `json:"to_col"`
	ToRow   int  `json:"to_row"`
	Pass    bool `json:"pass,omitempty"`
}

func NewMove(fromCol, fromRow, toCol, toRow int) Move {
	return Move{FromCol: fromCol, FromRow: fromRow, ToCol: toCol, ToRow: toRow}
}

func PassMove() Move {
	return Move{Pass: true}
}

func (m Move) IsPass() bool {
	return m.Pass
}

// Distance is the Chebyshev distance between source and destination.
func (m Move) Distance() int {
	if m.Pass {
		return 0
	}
	return max(absInt(m.ToCol-m.FromCol), absInt(m.ToRow-m.FromRow))
}

func (m Move) IsExtend() bool {
	return m.Distance() == 1
}

func (m Move) IsJump() bool {
	return m.Distance() == 2
}

func (m Move) Equals(other Move) bool {
	if m.Pass || other.Pass {
		return m.Pass == other.Pass
	}
	return m == other
}

func (m Move) String() string {
	if m.Pass {
		return "-"
	}
	return squareName(m.FromCol, m.FromRow) + "-" + squareName(m.ToCol, m.ToRow)
}

// ParseMove accepts "c0r0-c1r1" (for example "a1-b2") or "-" for a pass.
func ParseMove(text string) (Move, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "-" {
		return PassMove(), nil
	}
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return Move{}, errors.Errorf("malformed move %q", text)
	}
	fromCol, fromRow, err := parseSquare(parts[0])
	if err != nil {
		return Move{}, errors.Wrapf(err, "move %q", text)
	}
	toCol, toRow, err := parseSquare(parts[1])
	if err != nil {
		return Move{}, errors.Wrapf(err, "move %q", text)
	}
	return NewMove(fromCol, fromRow, toCol, toRow), nil
}

func squareName(col, row int) string {
	return fmt.Sprintf("%c%c", 'a'+rune(col), '1'+rune(row))
}

func parseSquare(text string) (int, int, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if len(text) != 2 {
		return 0, 0, errors.Errorf("malformed square %q", text)
	}
	col := int(text[0] - 'a')
	row := int(text[1] - '1')
	if !inBounds(col, row) {
		return 0, 0, errors.Errorf("square %q off board", text)
	}
	return col, row, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
