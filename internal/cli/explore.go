package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	graphio "github.com/matzehuels/graphscape/pkg/io"
	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/session"
)

// List styles
var (
	listSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	listCollapsedStyle = lipgloss.NewStyle().Foreground(colorRed)
	listDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// Row markers.
const (
	markVisible   = "●"
	markCollapsed = "▸"
	markHidden    = "·"
)

// exploreCommand creates the interactive collapse/expand browser.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		output string
		flags  pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json|graph.yaml]",
		Short: "Interactively collapse and expand parts of a graph",
		Long: `Interactively collapse and expand parts of a graph.

Every node of the input is listed. Collapsing a node hides its outgoing edges
and every node whose parents are all collapsed or hidden. The layout is
recomputed after each change.

Keys:
  ↑/↓ or k/j   move
  space        collapse or uncollapse the selected node
  e            expand the collapsed ancestors hiding the selected node
  q            save and quit

The collapsed set is saved per input file and restored by 'explore' and
'watch'. The final result is written to <input>.layout.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd, args[0], &flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runExplore starts the TUI and writes the final result on exit.
func (c *CLI) runExplore(cmd *cobra.Command, input string, flags *pipelineFlags, output string) error {
	ctx := cmd.Context()

	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	doc, err := graphio.Open(ctx, input)
	if err != nil {
		return err
	}

	store := openSnapshots(c.Logger)
	sess, collapsed := store.resume(ctx, input)
	if !cmd.Flags().Changed("collapse") && len(collapsed) > 0 {
		cfg.Pipeline.Collapsed = collapsed
	}

	// The TUI owns the terminal; only warnings reach the log.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(max(level, LogWarn))
	defer c.Logger.SetLevel(level)

	opts := cfg.Pipeline
	opts.Logger = c.Logger
	m, err := newExploreModel(ctx, sess, doc, opts)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	m = final.(exploreModel)
	store.save(ctx, sess)

	if output == "" {
		output = graphio.LayoutPath(graphio.LocalName(input))
	}
	if err := graphio.ExportJSON(m.res, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Saved %d collapsed nodes", len(sess.Collapsed()))
	printFile(output)
	printResult(m.res)
	return nil
}

// =============================================================================
// exploreModel - Interactive collapse/expand
// =============================================================================

// exploreRow is one input node in the list.
type exploreRow struct {
	ID       string
	Label    string
	Children int
}

// exploreModel is the bubbletea model of the explorer. Every collapse
// change runs the session engine synchronously.
type exploreModel struct {
	ctx  context.Context
	sess *session.Session
	doc  graph.Document
	opts pipeline.Options

	res       *pipeline.Result
	rows      []exploreRow
	hidden    map[string]bool
	collapsed map[string]bool

	Cursor  int
	Offset  int
	Height  int
	Message string
}

// newExploreModel runs the session once and lists the nodes of doc.
func newExploreModel(ctx context.Context, sess *session.Session, doc graph.Document, opts pipeline.Options) (exploreModel, error) {
	m := exploreModel{
		ctx:    ctx,
		sess:   sess,
		doc:    doc,
		opts:   opts,
		rows:   exploreRows(doc),
		Height: 15,
	}
	res, err := sess.Run(ctx, doc, opts)
	if err != nil {
		return m, err
	}
	m.apply(res)
	return m, nil
}

// exploreRows lists the distinct node IDs of doc in input order with their
// outgoing edge counts.
func exploreRows(doc graph.Document) []exploreRow {
	children := make(map[string]int)
	for _, e := range doc.Edges {
		if e.Source != e.Target {
			children[e.Source]++
		}
	}
	var rows []exploreRow
	seen := make(map[string]bool)
	for _, n := range doc.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		rows = append(rows, exploreRow{ID: n.ID, Label: n.Label, Children: children[n.ID]})
	}
	return rows
}

// apply records a finished run.
func (m *exploreModel) apply(res *pipeline.Result) {
	m.res = res
	m.hidden = make(map[string]bool, len(res.Hidden.Nodes))
	for _, id := range res.Hidden.Nodes {
		m.hidden[id] = true
	}
	m.opts.Collapsed = m.sess.Collapsed()
	m.collapsed = make(map[string]bool, len(m.opts.Collapsed))
	for _, id := range m.opts.Collapsed {
		m.collapsed[id] = true
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space":
			m.toggle()
		case "e":
			m.expand()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// selected returns the node ID under the cursor.
func (m *exploreModel) selected() (string, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return "", false
	}
	return m.rows[m.Cursor].ID, true
}

// toggle collapses or uncollapses the selected node.
func (m *exploreModel) toggle() {
	id, ok := m.selected()
	if !ok {
		return
	}
	if m.hidden[id] {
		m.Message = fmt.Sprintf("%s is hidden, press e to expand its path", id)
		return
	}

	opts := m.opts
	if m.collapsed[id] {
		opts.Collapsed = slices.DeleteFunc(slices.Clone(m.opts.Collapsed), func(c string) bool { return c == id })
	} else {
		opts.Collapsed = append(slices.Clone(m.opts.Collapsed), id)
	}
	res, err := m.sess.Run(m.ctx, m.doc, opts)
	if err != nil {
		m.Message = errors.UserMessage(err)
		return
	}
	m.apply(res)
	if m.collapsed[id] {
		m.Message = fmt.Sprintf("Collapsed %s, %d nodes hidden", id, len(res.Hidden.Nodes))
	} else {
		m.Message = fmt.Sprintf("Uncollapsed %s, %d nodes hidden", id, len(res.Hidden.Nodes))
	}
}

// expand reveals the selected node by expanding its collapsed ancestors.
func (m *exploreModel) expand() {
	id, ok := m.selected()
	if !ok {
		return
	}
	if !m.hidden[id] {
		m.Message = fmt.Sprintf("%s is already visible", id)
		return
	}
	res, path, err := m.sess.Expand(m.ctx, id)
	if err != nil {
		m.Message = errors.UserMessage(err)
		return
	}
	m.apply(res)
	m.Message = fmt.Sprintf("Expanded %s", strings.Join(path, ", "))
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space collapse  e expand path  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark, style := markVisible, listNormalStyle
		switch {
		case m.hidden[r.ID]:
			mark, style = markHidden, listDimStyle
		case m.collapsed[r.ID]:
			mark, style = markCollapsed, listCollapsedStyle
		}
		if i == m.Cursor {
			style = listSelectedStyle
		}

		name := r.ID
		if r.Label != "" && r.Label != r.ID {
			name += " " + listDimStyle.Render("("+r.Label+")")
		}
		detail := ""
		if n, ok := m.res.Node(r.ID); ok {
			detail = fmt.Sprintf("size %.1f", n.Size)
		}
		if r.Children > 0 {
			detail += fmt.Sprintf("  %d out", r.Children)
		}

		b.WriteString(style.Render(fmt.Sprintf("%s%s %s", cursor, mark, name)))
		b.WriteString("  ")
		b.WriteString(listDimStyle.Render(detail))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d visible · %d hidden · %d collapsed",
		m.Cursor+1, len(m.rows), len(m.res.Nodes), len(m.res.Hidden.Nodes), len(m.collapsed))))
	if m.Message != "" {
		b.WriteString("\n  ")
		b.WriteString(StyleHighlight.Render(m.Message))
	}
	return b.String()
}
