package cli

import (
	"context"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/session"
)

// chain is 1 -> 2 -> 3 plus an isolated node 4.
func chain() graph.Document {
	return graph.Document{
		Nodes: []graph.RawNode{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "1"}},
		Edges: []graph.RawEdge{
			{ID: "1-2", Source: "1", Target: "2"},
			{ID: "2-3", Source: "2", Target: "3"},
		},
	}
}

func newTestExplorer(t *testing.T, collapsed ...string) exploreModel {
	t.Helper()
	sess := session.New(uuid.NewString(), nil)
	opts := pipeline.Options{Layout: layout.Options{Type: layout.Circular2D}, Collapsed: collapsed}
	m, err := newExploreModel(context.Background(), sess, chain(), opts)
	if err != nil {
		t.Fatalf("newExploreModel() error: %v", err)
	}
	return m
}

func press(m exploreModel, keys ...string) exploreModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

func TestExploreRows(t *testing.T) {
	rows := exploreRows(chain())
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if !slices.Equal(ids, []string{"1", "2", "3", "4"}) {
		t.Errorf("rows = %v, want [1 2 3 4] without duplicates", ids)
	}
	if rows[0].Children != 1 || rows[3].Children != 0 {
		t.Errorf("children = %d, %d, want 1 and 0", rows[0].Children, rows[3].Children)
	}
}

func TestExplore_ToggleCollapse(t *testing.T) {
	m := newTestExplorer(t)
	if len(m.res.Nodes) != 4 {
		t.Fatalf("visible = %d, want 4", len(m.res.Nodes))
	}

	m = press(m, " ")
	if !m.collapsed["1"] || !m.hidden["2"] || !m.hidden["3"] {
		t.Errorf("after collapsing 1: collapsed %v, hidden %v", m.collapsed, m.hidden)
	}
	if len(m.res.Nodes) != 2 {
		t.Errorf("visible = %d, want 2", len(m.res.Nodes))
	}

	m = press(m, " ")
	if len(m.collapsed) != 0 || len(m.hidden) != 0 {
		t.Errorf("after uncollapsing 1: collapsed %v, hidden %v", m.collapsed, m.hidden)
	}
}

func TestExplore_HiddenNodeCannotCollapse(t *testing.T) {
	m := newTestExplorer(t, "1")
	m = press(m, "down", " ")
	if m.collapsed["2"] {
		t.Error("hidden node 2 was collapsed")
	}
	if !strings.Contains(m.Message, "hidden") {
		t.Errorf("Message = %q, want a hint about the hidden node", m.Message)
	}
}

func TestExplore_ExpandPath(t *testing.T) {
	m := newTestExplorer(t, "1")
	m = press(m, "down", "down", "e")
	if m.hidden["3"] || m.collapsed["1"] {
		t.Errorf("after expanding 3: collapsed %v, hidden %v", m.collapsed, m.hidden)
	}
	if got := m.sess.Collapsed(); len(got) != 0 {
		t.Errorf("session collapsed = %v, want empty", got)
	}
	if m.Message != "Expanded 1" {
		t.Errorf("Message = %q, want %q", m.Message, "Expanded 1")
	}

	m = press(m, "e")
	if !strings.Contains(m.Message, "already visible") {
		t.Errorf("Message = %q, want already visible", m.Message)
	}
}

func TestExplore_CursorBounds(t *testing.T) {
	m := newTestExplorer(t)
	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up at top, want 0", m.Cursor)
	}
	m = press(m, "down", "down", "down", "down", "down")
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d after moving past the end, want 3", m.Cursor)
	}
}

func TestExplore_View(t *testing.T) {
	m := newTestExplorer(t, "1")
	view := m.View()
	for _, want := range []string{"Explore Graph", markCollapsed, markHidden, "2 visible", "2 hidden"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestExplore_Quit(t *testing.T) {
	m := newTestExplorer(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
