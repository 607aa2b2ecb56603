package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/soundchunk/pkg/audio"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/editor"
	"github.com/matzehuels/soundchunk/pkg/flow"
	graphio "github.com/matzehuels/soundchunk/pkg/io"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/reconcile"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listSourceStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const editHelp = "↑/↓ select  ⏎ connect  d disconnect  t/l layout  a/s audio  w write  q quit"

// editSession is the state shared between the model and the editor
// callbacks. bubbletea copies the model on every update; the session does
// not move.
type editSession struct {
	ctx    context.Context
	editor *editor.Editor
	audio  *audio.NullContext
	path   string
	dirty  bool
}

// newEditSession builds an editor whose edge callbacks accept every
// proposal and mark the session dirty. The editor logs nowhere unless opts
// set a logger: the TUI owns the terminal while it runs.
func newEditSession(ctx context.Context, g chunk.Elements, path string, opts ...editor.Option) *editSession {
	s := &editSession{ctx: ctx, audio: audio.NewGatedContext(), path: path}
	accept := func(_ context.Context, edges []chunk.Edge) []chunk.Edge {
		s.dirty = true
		return edges
	}
	opts = append([]editor.Option{editor.WithLogger(log.NewWithOptions(io.Discard, log.Options{}))}, opts...)
	s.editor = editor.New(g, editor.Dependencies{
		SendEdgeUpdate:  accept,
		SendEdgeRemoval: accept,
		AudioContext:    s.audio,
	}, opts...)
	return s
}

// EditModel is the bubbletea model for the interactive graph editor.
type EditModel struct {
	session *editSession
	Cursor  int
	Source  string
	Status  string
	Err     error
}

// NewEditModel creates an edit model over a mounted session.
func NewEditModel(s *editSession) EditModel {
	return EditModel{session: s}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) nodes() []chunk.Node {
	return m.session.editor.Graph().Nodes
}

func (m EditModel) current() (chunk.Node, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return chunk.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	ctx := m.session.ctx
	ed := m.session.editor
	m.Err = nil

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.nodes())-1 {
			m.Cursor++
		}
	case "esc":
		m.Source = ""
		m.Status = ""
	case "enter", " ", "c":
		n, ok := m.current()
		if !ok {
			break
		}
		if m.Source == "" {
			m.Source = n.ID
			m.Status = fmt.Sprintf("connect %s → ?", n.ID)
			break
		}
		conn := reconcile.Connection{Source: m.Source, Target: n.ID}
		if ed.Connect(ctx, conn) {
			m.Status = fmt.Sprintf("connected %s → %s", conn.Source, conn.Target)
		} else {
			m.Status = fmt.Sprintf("rejected %s → %s", conn.Source, conn.Target)
		}
		m.Source = ""
	case "d":
		n, ok := m.current()
		if !ok {
			break
		}
		var keys []chunk.EdgeKey
		for _, e := range ed.Graph().EdgesFrom(n.ID) {
			keys = append(keys, e.Key())
		}
		if len(keys) == 0 {
			m.Status = fmt.Sprintf("%s has no outgoing edges", n.ID)
			break
		}
		m.Status = fmt.Sprintf("removed %d edges from %s", ed.RemoveEdges(ctx, keys...), n.ID)
	case "t":
		m.Err = m.layout(layout.TopBottom)
	case "l":
		m.Err = m.layout(layout.LeftRight)
	case "a":
		m.session.audio.Allow()
		m.Status = "audio " + string(ed.ResumeAudio(ctx))
	case "s":
		m.Status = "audio " + string(ed.SuspendAudio(ctx))
	case "w":
		if err := m.write(); err != nil {
			m.Err = err
			break
		}
		m.Status = "wrote " + m.session.path
	}
	return m, nil
}

func (m *EditModel) layout(dir layout.Direction) error {
	if err := m.session.editor.Layout(m.session.ctx, dir); err != nil {
		return err
	}
	m.Status = fmt.Sprintf("layout %s", dir)
	return nil
}

func (m EditModel) write() error {
	if toStdout(m.session.path) {
		return fmt.Errorf("no output file (use --output)")
	}
	if err := graphio.Export(m.session.editor.Graph(), m.session.path); err != nil {
		return err
	}
	m.session.dirty = false
	return nil
}

func (m EditModel) View() string {
	var b strings.Builder
	ed := m.session.editor

	b.WriteString(StyleTitle.Render("Edit Signal Graph"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("rev %d  %s  audio %s", ed.Revision(), ed.Direction(), ed.AudioState())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(editHelp))
	b.WriteString("\n\n")

	positions := flow.Positions(ed.Elements())
	g := ed.Graph()
	nodes := g.Nodes
	rows := make([][]string, 0, len(nodes))
	for i, n := range nodes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		pos := "—"
		if p, ok := positions[n.ID]; ok {
			pos = fmt.Sprintf("%.0f,%.0f", p.X, p.Y)
		}
		rows = append(rows, []string{
			cursor,
			n.ID,
			n.DisplayName(),
			roleList(n.Roles),
			fmt.Sprintf("%d/%d", len(n.Inputs), len(n.Outputs)),
			fmt.Sprintf("%d/%d", len(g.EdgesTo(n.ID)), len(g.EdgesFrom(n.ID))),
			pos,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Roles", "Ports", "Edges", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case nodes[row].ID == m.Source:
				return listSourceStyle
			case row == m.Cursor:
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	edges := g.Edges
	b.WriteString(StyleDim.Render(fmt.Sprintf("Edges (%d)", len(edges))))
	b.WriteString("\n")
	for _, e := range edges {
		b.WriteString(fmt.Sprintf("  %s → %s\n", e.Source, e.Destination))
	}

	b.WriteString("\n")
	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render("✗ " + m.Err.Error()))
	case m.Status != "":
		b.WriteString(StyleHighlight.Render(m.Status))
	}
	if m.session.dirty {
		b.WriteString(StyleWarning.Render("  (unsaved)"))
	}
	b.WriteString("\n")
	return b.String()
}

func roleList(roles []chunk.NodeRole) string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return strings.Join(out, ",")
}
