package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/codex-reversi/internal/app"
	"github.com/jaminalder/codex-reversi/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"cellSymbol": func(c domain.Cell) string {
			switch c {
			case domain.Black:
				return "●"
			case domain.White:
				return "○"
			default:
				return ""
			}
		},
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Reversi</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Reversi</h1>
<form action="/game" method="post">
  <select name="variant">
    {{range .Variants}}<option value="{{.Name}}"{{if eq .Name $.Default}} selected{{end}}>{{.Name}} ({{.Size}}x{{.Size}})</option>{{end}}
  </select>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="live" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board" class="{{.Variant}}">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="panel">
    <div class="turn">Turn: <span class="disc {{.Turn}}">{{cellSymbol .TurnCell}}</span> {{.Turn}}</div>
    <div class="score">● {{.Score.Black}} ○ {{.Score.White}}</div>
    <div class="status">
      {{if .Over}}<span class="end">Game over: {{.Outcome}}</span>
      {{else if .CanPass}}<span class="pass">No legal move, pass</span>
      {{else}}<span class="ok">Place a piece</span>{{end}}
    </div>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">Reset</button></form>
    <form hx-post="/game/{{.ID}}/pass" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit"{{if not .CanPass}} disabled{{end}}>Pass</button></form>
  </div>
  {{range .Rows}}
  <div class="row">
    {{range .}}
      {{if .Legal}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{.R}}">
        <input type="hidden" name="c" value="{{.C}}">
        <button type="submit" class="hint"></button>
      </form>
      {{else}}
      <span class="cell">{{cellSymbol .Cell}}</span>
      {{end}}
    {{end}}
  </div>
  {{end}}
</div>
`

type cellView struct {
	R, C  int
	Cell  domain.Cell
	Legal bool
}

// boardView is what the board template renders.
type boardView struct {
	ID       string
	Variant  string
	Rows     [][]cellView
	Turn     string
	TurnCell domain.Cell
	Score    domain.Score
	Over     bool
	Outcome  string
	CanPass  bool
	Error    string
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	g := gs.Game
	legal := make(map[domain.Pos]bool)
	for _, p := range g.LegalMoves() {
		legal[p] = true
	}
	v := boardView{
		ID:       gs.ID,
		Variant:  g.Variant.Name,
		Turn:     g.Turn.String(),
		TurnCell: g.Turn,
		Score:    g.Score(),
		Over:     g.Over(),
		Error:    errMsg,
	}
	v.CanPass = !v.Over && len(legal) == 0
	if v.Over {
		v.Outcome = v.Score.Outcome().String()
	}
	for r, row := range g.Board.Rows() {
		cells := make([]cellView, len(row))
		for c, cell := range row {
			cells[c] = cellView{R: r, C: c, Cell: cell, Legal: legal[domain.Pos{R: r, C: c}]}
		}
		v.Rows = append(v.Rows, cells)
	}
	return v
}
