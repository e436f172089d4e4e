package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/codex-reversi/internal/app"
	"github.com/jaminalder/codex-reversi/internal/domain"
	"github.com/zeromicro/go-zero/core/logx"
)

type handlers struct {
	svc            *app.Service
	tpl            *templates
	defaultVariant domain.Variant
	heartbeat      time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, gs app.GameState, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderBoard(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Variants []domain.Variant
		Default  string
	}{Variants: domain.Variants, Default: h.defaultVariant.Name}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, "", data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	v := h.defaultVariant
	if name := r.FormValue("variant"); name != "" {
		var err error
		if v, err = domain.VariantByName(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	gs, err := h.svc.CreateGame(v)
	if err != nil {
		logx.WithContext(r.Context()).Errorf("create game: %v", err)
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID    string
		Board boardView
	}{ID: gs.ID, Board: newBoardView(*gs, "")}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

// rejectionMessage maps a rejected action to the text shown above the board.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrIllegalMove):
		return "No pieces to flip there"
	case errors.Is(err, domain.ErrOutOfRange):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	case errors.Is(err, domain.ErrCannotPass):
		return "You still have a legal move"
	default:
		return "Invalid move"
	}
}

// respond renders the board after an action. Rejected actions leave the
// game unchanged and show the current board with a message.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, id string, gs *app.GameState, err error) {
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = rejectionMessage(err)
		logx.WithContext(r.Context()).Debugf("rejected on %s: %v", id, err)
		if gs, _ = h.svc.Get(id); gs == nil {
			http.NotFound(w, r)
			return
		}
	}
	h.writeBoard(w, *gs, errMsg)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ri, errR := strconv.Atoi(r.FormValue("r"))
	ci, errC := strconv.Atoi(r.FormValue("c"))
	if errR != nil || errC != nil {
		http.Error(w, "r and c must be integers", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.Play(id, ri, ci)
	h.respond(w, r, id, gs, err)
}

func (h *handlers) pass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, err := h.svc.Pass(id)
	h.respond(w, r, id, gs, err)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, err := h.svc.Reset(id)
	h.respond(w, r, id, gs, err)
}

type stateResponse struct {
	ID      string       `json:"id"`
	Variant string       `json:"variant"`
	Size    int          `json:"size"`
	Board   [][]string   `json:"board"`
	Turn    string       `json:"turn"`
	Legal   []domain.Pos `json:"legal"`
	Score   domain.Score `json:"score"`
	Over    bool         `json:"over"`
	Outcome string       `json:"outcome,omitempty"`
}

func newStateResponse(gs app.GameState) stateResponse {
	g := gs.Game
	resp := stateResponse{
		ID:      gs.ID,
		Variant: g.Variant.Name,
		Size:    g.Board.Size(),
		Turn:    g.Turn.String(),
		Legal:   append([]domain.Pos{}, g.LegalMoves()...),
		Score:   g.Score(),
		Over:    g.Over(),
	}
	if resp.Over {
		resp.Outcome = resp.Score.Outcome().String()
	}
	for _, row := range g.Board.Rows() {
		out := make([]string, len(row))
		for i, c := range row {
			out[i] = c.String()
		}
		resp.Board = append(resp.Board, out)
	}
	return resp
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := sonic.Marshal(newStateResponse(*gs))
	if err != nil {
		logx.WithContext(r.Context()).Errorf("encode state: %v", err)
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: board\n")
			for _, line := range bytes.Split(b, []byte("\n")) {
				_, _ = fmt.Fprintf(w, "data: %s\n", line)
			}
			_, _ = io.WriteString(w, "\n")
			flusher.Flush()
		}
	}
}
