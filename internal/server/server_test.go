package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/instrumap/pkg/cache"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/observability"
	"github.com/matzehuels/instrumap/pkg/pipeline"
	"github.com/matzehuels/instrumap/pkg/store"
)

const demoYAML = `
name: demo
categories:
  sources: Sources
  samples: Samples
components:
  - name: origin
    type: Progress_bar
    category: sources
  - name: source
    type: Source_simple
    category: sources
    jump: sample
  - name: sample
    type: Incoherent
    category: samples
    at: source
    rotated: origin
`

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := New(pipeline.NewRunner(nil, nil, nil), st, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func create(t *testing.T, ts *httptest.Server, body string) CreateResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/diagrams?measure=estimate", "application/yaml", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /diagrams status = %d, want 201", resp.StatusCode)
	}
	var cr CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		t.Fatal(err)
	}
	return cr
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return er
}

func TestCreateAndGet(t *testing.T) {
	ts, st := newTestServer(t)

	cr := create(t, ts, demoYAML)
	if cr.ID == "" || cr.Name != "demo" {
		t.Fatalf("create response = %+v", cr)
	}
	if cr.Boxes != 4 {
		t.Errorf("boxes = %d, want 4", cr.Boxes)
	}
	if st.Len() != 1 {
		t.Errorf("store holds %d records, want 1", st.Len())
	}

	resp, err := http.Get(ts.URL + "/diagrams/" + cr.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	var d struct {
		Name  string `json:"name"`
		Boxes []struct {
			Name string `json:"name"`
		} `json:"boxes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, b := range d.Boxes {
		names = append(names, b.Name)
	}
	if diff := cmp.Diff([]string{"ABSOLUTE", "origin", "source", "sample"}, names); diff != "" {
		t.Errorf("box names (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	ts, _ := newTestServer(t)
	cr := create(t, ts, demoYAML)

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/render.svg?popups=true", http.StatusOK, "image/svg+xml"},
		{"/render.json", http.StatusOK, "application/json"},
		{"/render.dot", http.StatusOK, "text/vnd.graphviz"},
		{"/render.png?scale=1", http.StatusOK, "image/png"},
		{"/render.gif", http.StatusBadRequest, "application/json"},
		{"/render.png?scale=-1", http.StatusBadRequest, "application/json"},
		{"/render.svg?popups=maybe", http.StatusBadRequest, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/diagrams/" + cr.ID + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
		})
	}
}

func TestRenderCacheHeader(t *testing.T) {
	ts, _ := newTestServer(t)
	cr := create(t, ts, demoYAML)

	get := func() string {
		resp, err := http.Get(ts.URL + "/diagrams/" + cr.ID + "/render.svg")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.Header.Get("X-Cache")
	}
	// NewRunner(nil, ...) uses a NullCache, so every render misses.
	if first, second := get(), get(); first != "miss" || second != "miss" {
		t.Errorf("X-Cache = %q, %q; want miss, miss", first, second)
	}
}

func TestHover(t *testing.T) {
	ts, st := newTestServer(t)
	cr := create(t, ts, demoYAML)

	rec, err := st.Get(context.Background(), cr.ID)
	if err != nil {
		t.Fatal(err)
	}
	sample, ok := rec.Diagram.Box("sample")
	if !ok {
		t.Fatal("sample box missing")
	}

	url := ts.URL + "/diagrams/" + cr.ID + "/hover?x=" + ftoa((sample.Left+sample.Right)/2) + "&y=" + ftoa(sample.CenterY)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var hr HoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatal(err)
	}
	if hr.Description != sample.Description {
		t.Errorf("description = %q, want %q", hr.Description, sample.Description)
	}

	for _, q := range []string{"?x=a&y=1", "?x=1"} {
		resp, err := http.Get(ts.URL + "/diagrams/" + cr.ID + "/hover" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("hover%s status = %d, want 400", q, resp.StatusCode)
		}
	}

	resp, err = http.Get(ts.URL + "/diagrams/" + cr.ID + "/hover?x=-5&y=-5")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("hover outside canvas status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateErrors(t *testing.T) {
	ts, _ := newTestServer(t, WithMaxBody(2048))

	tests := []struct {
		name   string
		body   string
		query  string
		status int
		code   errors.Code
	}{
		{"empty body", "", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad yaml", "components: {", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown reference", strings.Replace(demoYAML, "jump: sample", "jump: nowhere", 1), "", http.StatusUnprocessableEntity, errors.ErrCodeUnresolvedReference},
		{"bad measure", demoYAML, "?measure=ruler", http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"bad flag", demoYAML, "?analysis=perhaps", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too large", strings.Repeat("#", 4096), "", http.StatusRequestEntityTooLarge, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/diagrams"+tt.query, "application/yaml", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.code == "" {
				return
			}
			if er := decodeError(t, resp); er.Code != tt.code {
				t.Errorf("error = %+v, want code %s", er, tt.code)
			}
		})
	}
}

func TestNotFoundAndDelete(t *testing.T) {
	ts, st := newTestServer(t)

	resp, err := http.Get(ts.URL + "/diagrams/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", resp.StatusCode)
	}

	cr := create(t, ts, demoYAML)
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/diagrams/"+cr.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	if st.Len() != 0 {
		t.Errorf("store holds %d records after delete", st.Len())
	}

	resp, err = http.Get(ts.URL + "/diagrams/" + cr.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted id status = %d, want 404", resp.StatusCode)
	}
	if er := decodeError(t, resp); er.Code != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", er.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	ts, _ := newTestServer(t, WithCORSOrigin("https://example.org"))

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var h HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "healthy" {
		t.Errorf("status = %q", h.Status)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("allow origin = %q", got)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/diagrams", nil)
	pre, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	pre.Body.Close()
	if pre.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", pre.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
	h.status = append(h.status, status)
}

func TestObservabilityHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts, _ := newTestServer(t)
	cr := create(t, ts, demoYAML)
	resp, err := http.Get(ts.URL + "/diagrams/" + cr.ID + "/render.svg")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 2 {
		t.Fatalf("routes = %q, want two", hooks.routes)
	}
	if !strings.HasPrefix(hooks.routes[0], "POST /diagrams") {
		t.Errorf("create route = %q", hooks.routes[0])
	}
	if hooks.routes[1] != "GET /diagrams/{id}/render.{format}" {
		t.Errorf("render route = %q, want the matched pattern", hooks.routes[1])
	}
	if diff := cmp.Diff([]int{http.StatusCreated, http.StatusOK}, hooks.status); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvMongoDB, "")
	t.Setenv(EnvCORSOrigin, "")
	t.Setenv(EnvMaxBody, "4096")
	t.Setenv(EnvCachePrefix, "")

	s := LoadSettings(t.TempDir() + "/missing.env")
	want := Settings{Addr: ":9999", CORSOrigin: "*", MaxBodyBytes: 4096}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}

	opts := cache.ArtifactKeyOpts{Format: "svg"}
	if got, want := s.Keyer().ArtifactKey("h", opts), cache.NewDefaultKeyer().ArtifactKey("h", opts); got != want {
		t.Errorf("unscoped key = %q, want %q", got, want)
	}
	s.CachePrefix = "staging:"
	if got := s.Keyer().ArtifactKey("h", opts); !strings.HasPrefix(got, "staging:") {
		t.Errorf("scoped key = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.Wrap(errors.ErrCodeExtractionFailed, errors.Reference("a", "b"), "jump"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func ftoa(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
