package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Handler holds HTTP handlers for the match API.
type Handler struct {
	registry *Registry
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a new Handler backed by the given Registry.
func NewHandler(registry *Registry, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: registry, cfg: cfg, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Ad hoc matching.
	mux.HandleFunc("POST /match", h.handleMatch)
	mux.HandleFunc("POST /find", h.handleFind)

	// Named patterns.
	mux.HandleFunc("GET /patterns", h.handleListPatterns)
	mux.HandleFunc("POST /patterns", h.handleCreatePattern)
	mux.HandleFunc("GET /patterns/{name}", h.handleGetPattern)
	mux.HandleFunc("DELETE /patterns/{name}", h.handleDeletePattern)
	mux.HandleFunc("POST /patterns/{name}/match", h.handleMatchNamed)

	// Interactive matching over a WebSocket.
	mux.HandleFunc("GET /stream", h.handleStream)
}

func (h *Handler) checkText(text string) error {
	if len(text) > h.cfg.MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// maxBody bounds a request body. JSON escaping can expand one byte of text
// to six.
func (h *Handler) maxBody() int64 {
	return 6*int64(h.cfg.MaxTextLength+h.cfg.MaxPatternLength) + 4096
}

// --- Ad hoc Matching ---

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern string `json:"pattern"`
		Text    string `json:"text"`
	}
	if !decodeBody(w, r, h.maxBody(), &req) {
		return
	}
	if err := h.checkText(req.Text); err != nil {
		writeFailure(w, err)
		return
	}

	re, err := h.registry.Compile(req.Pattern)
	if err != nil {
		h.logger.Debug("pattern rejected", "pattern", req.Pattern, "error", err)
		writeFailure(w, err)
		return
	}

	start := time.Now()
	matched := re.MatchString(req.Text)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matched":    matched,
		"nfa_states": re.NumStates(),
		"took_us":    time.Since(start).Microseconds(),
	})
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern string `json:"pattern"`
		Text    string `json:"text"`
		All     bool   `json:"all"`
		Limit   int    `json:"limit"`
	}
	if !decodeBody(w, r, h.maxBody(), &req) {
		return
	}
	if len(req.Text) > h.cfg.MaxFindTextLength {
		writeFailure(w, fmt.Errorf("%w: find accepts at most %d bytes", ErrTextTooLong, h.cfg.MaxFindTextLength))
		return
	}

	re, err := h.registry.Compile(req.Pattern)
	if err != nil {
		writeFailure(w, err)
		return
	}

	limit := 1
	if req.All {
		limit = h.cfg.MaxFindResults
		if req.Limit > 0 && req.Limit < limit {
			limit = req.Limit
		}
	}

	// One extra span tells whether the list was cut short.
	fetch := limit
	if req.All {
		fetch++
	}
	matches := re.FindAllStringIndex(req.Text, fetch)
	truncated := len(matches) > limit
	if truncated {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = [][]int{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches":   matches,
		"truncated": truncated,
	})
}

// --- Named Patterns ---

func (h *Handler) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()

	infos := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		p, err := h.registry.Get(name)
		if err != nil {
			continue // Deleted concurrently.
		}
		infos = append(infos, p.Info())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patterns": infos,
	})
}

func (h *Handler) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Pattern string `json:"pattern"`
	}
	if !decodeBody(w, r, h.maxBody(), &req) {
		return
	}

	p, err := h.registry.Register(req.Name, req.Pattern)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p.Info())
}

func (h *Handler) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(r.PathValue("name"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Info())
}

func (h *Handler) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.registry.Delete(name); err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"name":   name,
	})
}

func (h *Handler) handleMatchNamed(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(r.PathValue("name"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	var req struct {
		Texts []string `json:"texts"`
	}
	if !decodeBody(w, r, h.maxBody(), &req) {
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "no texts provided")
		return
	}

	results := make([]bool, len(req.Texts))
	matched := 0
	for i, text := range req.Texts {
		if err := h.checkText(text); err != nil {
			writeFailure(w, err)
			return
		}
		results[i] = p.Match(text)
		if results[i] {
			matched++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    p.Name,
		"results": results,
		"matched": matched,
	})
}
