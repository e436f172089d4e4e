package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/codex-reversi/internal/domain"
	"github.com/zeromicro/go-zero/core/logx"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. It is the only writer of game
// state; every mutation happens under mu.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	now    func() time.Time
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return NewServiceWithRenderer(nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	s := &Service{
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
		now:   time.Now,
	}
	s.render = nopRenderer
	if renderer != nil {
		s.render = renderer
	}
	return s
}

func nopRenderer(GameState) []byte { return nil }

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = nopRenderer
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(v domain.Variant) (*GameState, error) {
	if _, err := domain.NewBoard(v); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	gs := &GameState{ID: id, Game: domain.New(v), Created: now, Updated: now}
	s.games[id] = gs
	logx.Infow("game created", logx.Field("game", id), logx.Field("variant", v.Name))
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Play places a piece for the side to move and broadcasts the new state.
func (s *Service) Play(id string, r, c int) (*GameState, error) {
	return s.mutate(id, "placement", func(g *domain.Game) error {
		return g.Play(r, c)
	}, logx.Field("r", r), logx.Field("c", c))
}

// Pass gives the turn away when the side to move has no legal move.
func (s *Service) Pass(id string) (*GameState, error) {
	return s.mutate(id, "pass", func(g *domain.Game) error {
		return g.Pass()
	})
}

// Reset restarts the game from the initial layout.
func (s *Service) Reset(id string) (*GameState, error) {
	return s.mutate(id, "reset", func(g *domain.Game) error {
		g.Reset()
		return nil
	})
}

// mutate applies fn to the game, updates timestamps and broadcasts. When fn
// fails the stored game is left as it was.
func (s *Service) mutate(id, action string, fn func(*domain.Game) error, fields ...logx.LogField) (*GameState, error) {
	var toDrop []*subscriber

	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	mover := gs.Game.Turn
	next := gs.Game
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Game = next
	gs.Updated = s.now()

	// Snapshot state and subscribers
	cp := *gs
	subs := s.copySubsLocked(id)
	payload := s.render(cp)
	s.mu.Unlock()

	score := cp.Game.Score()
	logx.Infow(action,
		append(fields,
			logx.Field("game", id),
			logx.Field("by", mover.String()),
			logx.Field("turn", cp.Game.Turn.String()),
			logx.Field("black", score.Black),
			logx.Field("white", score.White),
		)...)
	if action != "reset" && cp.Game.Over() {
		logx.Infof("[game over] %s: black %d - white %d => %s", id, score.Black, score.White, score.Outcome())
	}

	// Fan-out; drop slow subscribers by closing and marking for deletion
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
	}
	return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func. The channel is closed right away for unknown games.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{ch: make(chan []byte, 1)}
	if _, ok := s.games[id]; !ok {
		sub.close()
		return sub.ch, func() {}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
