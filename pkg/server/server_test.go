package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/pipeline"
)

const chainBody = `{
  "graph": {
    "nodes": [{"id": "1"}, {"id": "2"}, {"id": "3"}],
    "edges": [{"source": "1", "target": "2"}, {"source": "2", "target": "3"}]
  },
  "options": {"layout": {"type": "circular2d"}, "collapsed": ["1"]}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Options{Gatherer: prometheus.NewRegistry()})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := decodeBody[map[string]any](t, resp); body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	if resp := do(t, ts, http.MethodGet, "/metrics", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/v1/layout", chainBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	res := decodeBody[pipeline.Result](t, resp)
	if len(res.Nodes) != 1 || len(res.Hidden.Nodes) != 2 {
		t.Errorf("result = %d visible, %d hidden, want 1 and 2", len(res.Nodes), len(res.Hidden.Nodes))
	}
}

func TestLayout_RenderDOT(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/v1/layout?format=dot", chainBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.HasPrefix(buf.String(), "digraph") {
		t.Errorf("body = %q, want DOT source", buf.String())
	}
}

func TestLayout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"MalformedJSON", "/v1/layout", `{"graph": [`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"UnknownLayout", "/v1/layout", `{"graph": {}, "options": {"layout": {"type": "spiral"}}}`, http.StatusBadRequest, errors.ErrCodeInvalidLayoutType},
		{"ClusterOnTree", "/v1/layout", `{"graph": {}, "options": {"layout": {"type": "treeTd2d"}, "cluster": "team"}}`, http.StatusUnprocessableEntity, errors.ErrCodeUnsupportedClustering},
		{"CustomWithoutFunc", "/v1/layout", `{"graph": {}, "options": {"layout": {"type": "custom"}}}`, http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"UnknownFormat", "/v1/layout?format=gif", chainBody, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if body := decodeBody[errorResponse](t, resp); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestSessions(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/v1/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	id, _ := decodeBody[map[string]any](t, resp)["id"].(string)
	base := "/v1/sessions/" + id

	// Pinning before the first run only records the drag.
	if resp := do(t, ts, http.MethodPut, base+"/drags/2", `{"x": 5, "y": 6}`); resp.StatusCode != http.StatusNoContent {
		t.Errorf("drag before run status = %d, want 204", resp.StatusCode)
	}

	resp = do(t, ts, http.MethodPost, base+"/run", chainBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("run status = %d, want 200", resp.StatusCode)
	}
	if res := decodeBody[pipeline.Result](t, resp); len(res.Nodes) != 1 {
		t.Errorf("run visible nodes = %d, want 1", len(res.Nodes))
	}

	resp = do(t, ts, http.MethodPost, base+"/expand/3", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expand status = %d, want 200", resp.StatusCode)
	}
	exp := decodeBody[expandResponse](t, resp)
	if len(exp.Expanded) != 1 || exp.Expanded[0] != "1" || len(exp.Result.Nodes) != 3 {
		t.Errorf("expand = %v with %d nodes, want [1] with 3", exp.Expanded, len(exp.Result.Nodes))
	}
	if n, _ := exp.Result.Node("2"); n.Position != (graph.Position{X: 5, Y: 6}) {
		t.Errorf("node 2 at %v, want the pinned position", n.Position)
	}

	resp = do(t, ts, http.MethodPut, base+"/drags/1", `{"x": 1, "y": 1}`)
	if res := decodeBody[pipeline.Result](t, resp); res.Rebuilt {
		t.Error("drag re-run rebuilt the layout")
	}

	resp = do(t, ts, http.MethodDelete, base+"/drags", "")
	res := decodeBody[pipeline.Result](t, resp)
	if n, _ := res.Node("2"); n.Position == (graph.Position{X: 5, Y: 6}) {
		t.Error("clearing drags kept the pinned position")
	}

	if resp := do(t, ts, http.MethodDelete, base, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodPost, base+"/run", chainBody); resp.StatusCode != http.StatusNotFound {
		t.Errorf("run after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSessions_BadID(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/v1/sessions/nope/run", chainBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDefaults(t *testing.T) {
	s := New(Options{
		Gatherer: prometheus.NewRegistry(),
		Defaults: func() pipeline.Options {
			return pipeline.Options{Layout: layout.Options{Type: layout.Circular2D}}
		},
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/layout", "application/json", strings.NewReader(`{"graph": {"nodes": [{"id": "a"}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	res := decodeBody[pipeline.Result](t, resp)
	if n, _ := res.Node("a"); n.Position.X != layout.DefaultCircularRadius {
		t.Errorf("a at %v, want the circular default", n.Position)
	}
}
