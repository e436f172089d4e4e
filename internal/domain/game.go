package domain

import "errors"

// Game holds the current state of a Reversi match.
type Game struct {
	Variant Variant
	Board   Board
	Turn    Cell
}

// Errors returned by game operations. A rejected operation never changes
// the game.
var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game over")
	ErrCannotPass  = errors.New("legal moves available")
)

// New returns a new game with Black to move.
func New(v Variant) Game {
	b, err := NewBoard(v)
	if err != nil {
		// variants are package-level and fixed
		panic(err)
	}
	return Game{Variant: v, Board: b, Turn: Black}
}

// Over reports whether neither player can move.
func (g Game) Over() bool { return g.Board.Terminal() }

// LegalMoves lists the moves for the side to move.
func (g Game) LegalMoves() []Pos { return g.Board.LegalMoves(g.Turn) }

func (g Game) Score() Score { return g.Board.Score() }

// Play places the current turn at row r, column c.
func (g *Game) Play(r, c int) error {
	if g.Over() {
		return ErrGameOver
	}
	p := Pos{r, c}
	flips, err := g.Board.Flips(p, g.Turn)
	if err != nil {
		return err
	}
	if len(flips) == 0 {
		return ErrIllegalMove
	}
	nb, err := g.Board.Apply(p, g.Turn)
	if err != nil {
		return err
	}
	g.Board = nb
	// The turn passes even when the opponent has nothing to play; they
	// have to pass back explicitly.
	g.Turn = g.Turn.Opponent()
	return nil
}

// Pass hands the turn over when the side to move has no legal move.
func (g *Game) Pass() error {
	if g.Over() {
		return ErrGameOver
	}
	if len(g.LegalMoves()) > 0 {
		return ErrCannotPass
	}
	g.Turn = g.Turn.Opponent()
	return nil
}

// Reset restarts the game on the same variant.
func (g *Game) Reset() {
	*g = New(g.Variant)
}
