package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nfamatch/internal/syntax"
)

func newTestHandler(t *testing.T, cfg Config) *http.ServeMux {
	t.Helper()
	reg := NewRegistry(cfg, nil)
	mux := http.NewServeMux()
	NewHandler(reg, cfg, nil).RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, resp
}

// --- Config Tests ---

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPatternLength = 0
	cfg.MaxDFAStates = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "max_pattern_length") || !strings.Contains(err.Error(), "max_dfa_states") {
		t.Errorf("error %q should name both fields", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"max_pattern_length": 16, "max_dfa_states": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxPatternLength != 16 {
		t.Errorf("MaxPatternLength = %d, want 16", cfg.MaxPatternLength)
	}
	if cfg.MaxDFAStates != 0 {
		t.Errorf("MaxDFAStates = %d, want 0", cfg.MaxDFAStates)
	}
	if cfg.MaxTextLength != DefaultConfig().MaxTextLength {
		t.Errorf("MaxTextLength = %d, want default", cfg.MaxTextLength)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"max_patterns": -3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected error for invalid limits")
	}
}

// --- Registry Tests ---

func TestRegistry_Lifecycle(t *testing.T) {
	reg := NewRegistry(DefaultConfig(), nil)

	p, err := reg.Register("greeting", "hel+o")
	if err != nil {
		t.Fatal(err)
	}
	if p.dfa == nil {
		t.Error("small pattern should be determinized")
	}
	if !p.Match("hellllo") || p.Match("heo") {
		t.Error("registered pattern matches wrongly")
	}

	if _, err := reg.Register("greeting", "x"); !errors.Is(err, ErrPatternExists) {
		t.Errorf("duplicate Register err = %v, want ErrPatternExists", err)
	}

	got, err := reg.Get("greeting")
	if err != nil || got != p {
		t.Errorf("Get = %v, %v; want registered pattern", got, err)
	}

	if names := reg.Names(); len(names) != 1 || names[0] != "greeting" {
		t.Errorf("Names = %v, want [greeting]", names)
	}

	if err := reg.Delete("greeting"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Get("greeting"); !errors.Is(err, ErrPatternNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrPatternNotFound", err)
	}
	if err := reg.Delete("greeting"); !errors.Is(err, ErrPatternNotFound) {
		t.Errorf("second Delete err = %v, want ErrPatternNotFound", err)
	}
}

func TestRegistry_Limits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPatterns = 1
	cfg.MaxPatternLength = 8
	reg := NewRegistry(cfg, nil)

	if _, err := reg.Register("", "a"); !errors.Is(err, ErrEmptyPatternName) {
		t.Errorf("empty name err = %v, want ErrEmptyPatternName", err)
	}
	if _, err := reg.Register("long", "aaaaaaaaa"); !errors.Is(err, ErrPatternTooLong) {
		t.Errorf("long pattern err = %v, want ErrPatternTooLong", err)
	}
	if _, err := reg.Register("bad", "(a"); !errors.Is(err, syntax.ErrSyntax) {
		t.Errorf("bad pattern err = %v, want syntax error", err)
	}
	if _, err := reg.Register("one", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("two", "b"); !errors.Is(err, ErrTooManyPatterns) {
		t.Errorf("over capacity err = %v, want ErrTooManyPatterns", err)
	}
}

func TestRegistry_FallsBackToNFA(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDFAStates = 4
	reg := NewRegistry(cfg, nil)

	p, err := reg.Register("blowup", "(a|b)*a(a|b)(a|b)(a|b)")
	if err != nil {
		t.Fatal(err)
	}
	if p.dfa != nil {
		t.Error("DFA should exceed the state limit")
	}
	if !p.Match("baabb") || p.Match("bbbbb") {
		t.Error("NFA fallback matches wrongly")
	}
	if _, ok := p.Info()["dfa_states"]; ok {
		t.Error("Info should omit dfa_states without a DFA")
	}
}

// --- HTTP Tests ---

func TestHandleMatch(t *testing.T) {
	mux := newTestHandler(t, DefaultConfig())

	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"(ab)+", "ababab", true},
		{"(ab)+", "aba", false},
		{"", "", true},
		{"a.c", "abc", true},
	}
	for _, tt := range tests {
		rec, resp := doJSON(t, mux, "POST", "/match", map[string]string{"pattern": tt.pattern, "text": tt.text})
		if rec.Code != http.StatusOK {
			t.Fatalf("POST /match %q: status %d", tt.pattern, rec.Code)
		}
		if resp["matched"] != tt.want {
			t.Errorf("POST /match %q %q: matched = %v, want %v", tt.pattern, tt.text, resp["matched"], tt.want)
		}
	}
}

func TestHandleMatch_PatternErrors(t *testing.T) {
	mux := newTestHandler(t, DefaultConfig())

	tests := []struct {
		pattern  string
		kind     string
		position float64
	}{
		{"(a", "syntax", 0},
		{"ab**", "syntax", 3},
		{`ab\`, "lex", 2},
	}
	for _, tt := range tests {
		rec, resp := doJSON(t, mux, "POST", "/match", map[string]string{"pattern": tt.pattern, "text": "a"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("POST /match %q: status %d, want 400", tt.pattern, rec.Code)
			continue
		}
		body, _ := resp["error"].(map[string]interface{})
		if body["kind"] != tt.kind {
			t.Errorf("kind = %v, want %s", body["kind"], tt.kind)
		}
		if body["position"] != tt.position {
			t.Errorf("position = %v, want %v", body["position"], tt.position)
		}
	}
}

func TestHandleMatch_Limits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTextLength = 4
	mux := newTestHandler(t, cfg)

	rec, _ := doJSON(t, mux, "POST", "/match", map[string]string{"pattern": "a*", "text": "aaaaa"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	req := httptest.NewRequest("POST", "/match", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rr.Code)
	}
}

func TestHandleFind(t *testing.T) {
	mux := newTestHandler(t, DefaultConfig())

	_, resp := doJSON(t, mux, "POST", "/find", map[string]interface{}{"pattern": "o+", "text": "foo boo"})
	matches, _ := resp["matches"].([]interface{})
	if len(matches) != 1 {
		t.Fatalf("matches = %v, want one span", resp["matches"])
	}

	_, resp = doJSON(t, mux, "POST", "/find", map[string]interface{}{"pattern": "o+", "text": "foo boo", "all": true})
	matches, _ = resp["matches"].([]interface{})
	if len(matches) != 2 {
		t.Fatalf("matches = %v, want two spans", resp["matches"])
	}
	second, _ := matches[1].([]interface{})
	if len(second) != 2 || second[0] != float64(5) || second[1] != float64(7) {
		t.Errorf("second span = %v, want [5 7]", second)
	}

	_, resp = doJSON(t, mux, "POST", "/find", map[string]interface{}{"pattern": "z", "text": "foo"})
	if matches, _ := resp["matches"].([]interface{}); matches == nil || len(matches) != 0 {
		t.Errorf("matches = %v, want empty list", resp["matches"])
	}
}

func TestHandlePatterns(t *testing.T) {
	mux := newTestHandler(t, DefaultConfig())

	rec, resp := doJSON(t, mux, "POST", "/patterns", map[string]string{"name": "color", "pattern": "colou?r"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", rec.Code, resp)
	}

	rec, _ = doJSON(t, mux, "POST", "/patterns", map[string]string{"name": "color", "pattern": "x"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}

	rec, resp = doJSON(t, mux, "GET", "/patterns/color", nil)
	if rec.Code != http.StatusOK || resp["pattern"] != "colou?r" {
		t.Errorf("get = %d %v", rec.Code, resp)
	}

	rec, resp = doJSON(t, mux, "POST", "/patterns/color/match", map[string]interface{}{
		"texts": []string{"color", "colour", "colouur"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("match status = %d", rec.Code)
	}
	results, _ := resp["results"].([]interface{})
	want := []bool{true, true, false}
	if len(results) != len(want) {
		t.Fatalf("results = %v", results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %v, want %v", i, results[i], want[i])
		}
	}
	if resp["matched"] != float64(2) {
		t.Errorf("matched = %v, want 2", resp["matched"])
	}

	_, resp = doJSON(t, mux, "GET", "/patterns", nil)
	if list, _ := resp["patterns"].([]interface{}); len(list) != 1 {
		t.Errorf("patterns = %v, want one entry", resp["patterns"])
	}

	rec, _ = doJSON(t, mux, "DELETE", "/patterns/color", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec, _ = doJSON(t, mux, "GET", "/patterns/color", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	rec, _ = doJSON(t, mux, "POST", "/patterns/color/match", map[string]interface{}{"texts": []string{"a"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("match after delete status = %d, want 404", rec.Code)
	}
}

func TestErrorBody(t *testing.T) {
	body := errorBody(ErrPatternNotFound)
	if _, ok := body["kind"]; ok {
		t.Error("non-pattern errors should have no kind")
	}
	body = errorBody(&syntax.SyntaxError{Pos: 7, Reason: "x"})
	if body["kind"] != "syntax" || body["position"] != 7 {
		t.Errorf("errorBody = %v", body)
	}
}

func TestOpenRegistry_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")

	reg, err := OpenRegistry(DefaultConfig(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("year", "(19|20)...."); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("tmp", "x"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Delete("tmp"); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenRegistry(DefaultConfig(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if names := reopened.Names(); len(names) != 1 || names[0] != "year" {
		t.Fatalf("Names after reopen = %v, want [year]", names)
	}
	p, err := reopened.Get("year")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("1999") || p.Match("2100") {
		t.Error("restored pattern matches wrongly")
	}
}

func TestOpenRegistry_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	if err := os.WriteFile(path, []byte(`{"version": 1, "patterns": [], "checksum": "sha256:00"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenRegistry(DefaultConfig(), path, nil); err == nil {
		t.Error("expected error for corrupt pattern file")
	}
}

func TestHandleFind_Truncated(t *testing.T) {
	mux := newTestHandler(t, DefaultConfig())

	tests := []struct {
		limit     int
		spans     int
		truncated bool
	}{
		{2, 2, false},
		{1, 1, true},
		{5, 2, false},
	}
	for _, tt := range tests {
		_, resp := doJSON(t, mux, "POST", "/find", map[string]interface{}{
			"pattern": "o+", "text": "foo boo", "all": true, "limit": tt.limit,
		})
		matches, _ := resp["matches"].([]interface{})
		if len(matches) != tt.spans {
			t.Errorf("limit %d: %d spans, want %d", tt.limit, len(matches), tt.spans)
		}
		if resp["truncated"] != tt.truncated {
			t.Errorf("limit %d: truncated = %v, want %v", tt.limit, resp["truncated"], tt.truncated)
		}
	}
}

func TestHandleFind_TextLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFindTextLength = 8
	mux := newTestHandler(t, cfg)

	rec, _ := doJSON(t, mux, "POST", "/find", map[string]interface{}{"pattern": "a", "text": "aaaaaaaaa"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	// Matching the same text is still within MaxTextLength.
	rec, _ = doJSON(t, mux, "POST", "/match", map[string]interface{}{"pattern": "a*", "text": "aaaaaaaaa"})
	if rec.Code != http.StatusOK {
		t.Errorf("match status = %d, want 200", rec.Code)
	}
}

func TestHandler_BodyLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTextLength = 16
	cfg.MaxPatternLength = 16
	mux := newTestHandler(t, cfg)

	// Larger than 6*(16+16)+4096 bytes.
	big := strings.Repeat("a", 8192)
	rec, resp := doJSON(t, mux, "POST", "/match", map[string]string{"pattern": "a*", "text": big})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	body, _ := resp["error"].(map[string]interface{})
	if msg, _ := body["message"].(string); !strings.Contains(msg, "request body too large") {
		t.Errorf("message = %q", msg)
	}
}
