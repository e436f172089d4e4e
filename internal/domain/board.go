package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

// Opponent returns the other player. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// IsPlayer reports whether c is one of the two players.
func (c Cell) IsPlayer() bool { return c == Black || c == White }

func (c Cell) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return ""
	}
}

// Pos is a (row, column) pair.
type Pos struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Errors returned by board operations.
var (
	ErrOutOfRange    = errors.New("position out of range")
	ErrInvalidPlayer = errors.New("invalid player")
)

// N, S, W, E, NW, NE, SW, SE
var directions = [8]Pos{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Board is a square grid stored row-major. A Board is never modified after
// it is built, so copies may be shared freely.
type Board struct {
	size  int
	cells []Cell
}

// NewBoard returns the initial board for v.
func NewBoard(v Variant) (Board, error) {
	b := Board{size: v.Size, cells: make([]Cell, v.Size*v.Size)}
	for _, s := range v.Layout {
		if !b.InRange(s.Pos) {
			return Board{}, ErrOutOfRange
		}
		if !s.Cell.IsPlayer() {
			return Board{}, ErrInvalidPlayer
		}
		b.cells[b.index(s.Pos)] = s.Cell
	}
	return b, nil
}

// Size is the side length of the grid.
func (b Board) Size() int { return b.size }

// InRange reports whether p lies on the board.
func (b Board) InRange(p Pos) bool {
	return p.R >= 0 && p.R < b.size && p.C >= 0 && p.C < b.size
}

func (b Board) index(p Pos) int { return p.R*b.size + p.C }

// At returns the cell at p, or Empty when p is off the board.
func (b Board) At(p Pos) Cell {
	if !b.InRange(p) {
		return Empty
	}
	return b.cells[b.index(p)]
}

// Rows returns a copy of the grid as rows.
func (b Board) Rows() [][]Cell {
	rows := make([][]Cell, b.size)
	for r := range rows {
		rows[r] = append([]Cell(nil), b.cells[r*b.size:(r+1)*b.size]...)
	}
	return rows
}

// Flips returns the opponent pieces that placing player at p would turn.
// An occupied target yields no flips.
func (b Board) Flips(p Pos, player Cell) ([]Pos, error) {
	if !b.InRange(p) {
		return nil, ErrOutOfRange
	}
	if !player.IsPlayer() {
		return nil, ErrInvalidPlayer
	}
	if b.At(p) != Empty {
		return nil, nil
	}
	opp := player.Opponent()
	var res []Pos
	for _, d := range directions {
		var run []Pos
		q := Pos{p.R + d.R, p.C + d.C}
		for b.InRange(q) && b.At(q) == opp {
			run = append(run, q)
			q = Pos{q.R + d.R, q.C + d.C}
		}
		if len(run) > 0 && b.InRange(q) && b.At(q) == player {
			res = append(res, run...)
		}
	}
	return res, nil
}

// LegalMoves lists every position where player would flip at least one
// piece, in row-major order.
func (b Board) LegalMoves(player Cell) []Pos {
	var moves []Pos
	if !player.IsPlayer() {
		return moves
	}
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			p := Pos{r, c}
			if flips, _ := b.Flips(p, player); len(flips) > 0 {
				moves = append(moves, p)
			}
		}
	}
	return moves
}

// Apply returns a new board with player placed at p and the flip set turned.
// Legality is not checked: with no flips only the target cell changes.
func (b Board) Apply(p Pos, player Cell) (Board, error) {
	flips, err := b.Flips(p, player)
	if err != nil {
		return Board{}, err
	}
	nb := Board{size: b.size, cells: append([]Cell(nil), b.cells...)}
	nb.cells[nb.index(p)] = player
	for _, f := range flips {
		nb.cells[nb.index(f)] = player
	}
	return nb, nil
}

// Terminal reports whether neither player has a legal move.
func (b Board) Terminal() bool {
	return len(b.LegalMoves(Black)) == 0 && len(b.LegalMoves(White)) == 0
}

// Score counts pieces per player.
type Score struct {
	Black int `json:"black"`
	White int `json:"white"`
	Empty int `json:"empty"`
}

func (b Board) Score() Score {
	var s Score
	for _, c := range b.cells {
		switch c {
		case Black:
			s.Black++
		case White:
			s.White++
		default:
			s.Empty++
		}
	}
	return s
}

// Outcome is the result derived from a score. Winner is Empty on a tie.
type Outcome struct {
	Winner Cell
	Tie    bool
}

func (s Score) Outcome() Outcome {
	switch {
	case s.Black > s.White:
		return Outcome{Winner: Black}
	case s.White > s.Black:
		return Outcome{Winner: White}
	default:
		return Outcome{Tie: true}
	}
}

func (o Outcome) String() string {
	if o.Tie {
		return "tie"
	}
	return o.Winner.String() + " wins"
}
