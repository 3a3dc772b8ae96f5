package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"nfamatch/internal/automaton"
	"nfamatch/internal/storage"
	"nfamatch/pkg/regex"
)

var (
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrPatternExists    = errors.New("pattern already exists")
	ErrTooManyPatterns  = errors.New("pattern registry is full")
	ErrPatternTooLong   = errors.New("pattern exceeds maximum length")
	ErrTextTooLong      = errors.New("text exceeds maximum length")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrEmptyPatternName = errors.New("pattern name is required")
)

// Pattern is a compiled pattern held by the registry. It is immutable and
// shared by all concurrent requests.
type Pattern struct {
	Name      string
	Source    string
	CreatedAt time.Time

	re *regex.Regexp
	// dfa is nil when determinisation was disabled or exceeded the state limit.
	dfa *automaton.DFA
}

// Match reports whether the pattern matches the whole of text, using the DFA
// when one was built.
func (p *Pattern) Match(text string) bool {
	if p.dfa != nil {
		return automaton.Run(p.dfa, text)
	}
	return p.re.MatchString(text)
}

// Info describes the pattern for API responses.
func (p *Pattern) Info() map[string]interface{} {
	info := map[string]interface{}{
		"name":       p.Name,
		"pattern":    p.Source,
		"nfa_states": p.re.NumStates(),
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.dfa != nil {
		info["dfa_states"] = p.dfa.NumStates()
	}
	return info
}

// Registry manages named compiled patterns. A registry opened with
// OpenRegistry writes the pattern set to disk after every change.
type Registry struct {
	cfg    Config
	logger *slog.Logger
	path   string

	mu       sync.RWMutex
	patterns map[string]*Pattern
}

// NewRegistry creates an empty Registry.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:      cfg,
		logger:   logger,
		patterns: make(map[string]*Pattern),
	}
}

// OpenRegistry creates a Registry persisted at path, restoring the patterns
// saved by a previous run.
func OpenRegistry(cfg Config, path string, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(cfg, logger)
	records, err := storage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	for _, rec := range records {
		p, err := r.build(rec.Name, rec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("restore pattern %q: %w", rec.Name, err)
		}
		p.CreatedAt = rec.CreatedAt
		r.patterns[rec.Name] = p
	}
	r.path = path

	r.logger.Info("registry loaded", "path", path, "patterns", len(records))
	return r, nil
}

// Compile compiles source under the registry's limits without registering it.
func (r *Registry) Compile(source string) (*regex.Regexp, error) {
	if len(source) > r.cfg.MaxPatternLength {
		return nil, ErrPatternTooLong
	}
	return regex.Compile(source)
}

// Register compiles source and stores it under name.
func (r *Registry) Register(name, source string) (*Pattern, error) {
	if name == "" {
		return nil, ErrEmptyPatternName
	}
	p, err := r.build(name, source)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.patterns[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrPatternExists, name)
	}
	if len(r.patterns) >= r.cfg.MaxPatterns {
		return nil, ErrTooManyPatterns
	}
	r.patterns[name] = p
	if err := r.saveLocked(); err != nil {
		delete(r.patterns, name)
		return nil, err
	}

	r.logger.Info("pattern registered",
		"name", name,
		"nfa_states", p.re.NumStates(),
		"dfa", p.dfa != nil,
	)
	return p, nil
}

// build compiles source and, when the limit allows, determinizes it.
func (r *Registry) build(name, source string) (*Pattern, error) {
	re, err := r.Compile(source)
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		Name:      name,
		Source:    source,
		CreatedAt: time.Now(),
		re:        re,
	}
	if r.cfg.MaxDFAStates > 0 {
		dfa, err := automaton.Determinize(re.NFA(), r.cfg.MaxDFAStates)
		switch {
		case err == nil:
			p.dfa = dfa
		case errors.Is(err, automaton.ErrDFAStateLimitExceeded):
			r.logger.Debug("DFA state limit exceeded, matching with NFA",
				"name", name,
				"limit", r.cfg.MaxDFAStates,
			)
		default:
			return nil, fmt.Errorf("determinize %q: %w", name, err)
		}
	}
	return p, nil
}

// saveLocked writes the pattern set to disk. Callers hold r.mu.
func (r *Registry) saveLocked() error {
	if r.path == "" {
		return nil
	}
	records := make([]storage.Record, 0, len(r.patterns))
	for _, p := range r.patterns {
		records = append(records, storage.Record{
			Name:      p.Name,
			Pattern:   p.Source,
			CreatedAt: p.CreatedAt,
		})
	}
	if err := storage.Save(r.path, records); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Get returns the pattern registered under name.
func (r *Registry) Get(name string) (*Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPatternNotFound, name)
	}
	return p, nil
}

// Delete removes the pattern registered under name.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patterns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPatternNotFound, name)
	}
	delete(r.patterns, name)
	if err := r.saveLocked(); err != nil {
		r.patterns[name] = p
		return err
	}
	r.logger.Info("pattern deleted", "name", name)
	return nil
}

// Names returns the names of all registered patterns in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
