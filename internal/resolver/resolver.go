// Package resolver maps a link's raw target path to an absolute file
// within a scope directory, rescuing mis-pathed links via a basename
// cache built lazily from the scope tree.
package resolver

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/citeweave/citeweave/internal/security"
)

// Reason is why a Resolve call returned the path it did.
type Reason string

const (
	ReasonDirect    Reason = "direct"
	ReasonCache     Reason = "cache"
	ReasonNotFound  Reason = "not_found"
	ReasonDuplicate Reason = "duplicate"
)

// Result is the outcome of resolving one link target.
type Result struct {
	Found        bool
	AbsolutePath string
	Relative     string // scope-relative form of AbsolutePath, when Found
	Reason       Reason
	Candidates   []string // basenames (not_found) or full paths (duplicate)
	Suggestion   string   // best single fuzzy candidate, when not found
}

// Resolver is a short-name cache scoped to one directory tree, built
// lazily on first lookup and reused for the rest of a command run.
type Resolver struct {
	scope *security.Scope

	ignorePatterns []string

	built  bool
	byName map[string][]string // basename -> absolute paths, .md only
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithIgnorePatterns skips paths (relative to scopeDir) matching any of
// patterns when building the basename cache. A pattern ending in "/*"
// also matches the directory itself and everything under it.
func WithIgnorePatterns(patterns []string) Option {
	return func(r *Resolver) {
		r.ignorePatterns = patterns
	}
}

// New creates a Resolver rooted at scopeDir.
func New(scopeDir string, opts ...Option) (*Resolver, error) {
	scope, err := security.NewScope(scopeDir)
	if err != nil {
		return nil, err
	}
	r := &Resolver{scope: scope}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve implements the §4.3 algorithm: try a direct join against
// sourceDir first, then fall back to the scope-wide basename cache.
func (r *Resolver) Resolve(rawTarget, sourceDir string) Result {
	path := stripFragment(decodeTarget(rawTarget))

	if abs, ok := r.scope.ResolveWithin(sourceDir, path); ok {
		if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
			rel, _ := r.scope.Relative(abs)
			return Result{Found: true, AbsolutePath: abs, Relative: rel, Reason: ReasonDirect}
		}
	}

	r.ensureBuilt()

	base := filepath.Base(path)
	matches := r.byName[base]

	switch len(matches) {
	case 0:
		candidates := r.fuzzyCandidates(base)
		res := Result{Found: false, Reason: ReasonNotFound, Candidates: candidates}
		if len(candidates) > 0 {
			res.Suggestion = candidates[0]
		}
		return res
	case 1:
		abs := matches[0]
		rel, _ := r.scope.Relative(abs)
		return Result{Found: true, AbsolutePath: abs, Relative: rel, Reason: ReasonCache}
	default:
		return Result{Found: false, Reason: ReasonDuplicate, Candidates: matches}
	}
}

// SuggestAnchor returns the best Damerau-Levenshtein match (distance ≤
// 3, case-insensitive) for target among candidates, or ok=false if none
// qualifies.
func SuggestAnchor(target string, candidates []string) (string, bool) {
	return bestFuzzyMatch(target, candidates, 3)
}

func (r *Resolver) ensureBuilt() {
	if r.built {
		return
	}
	r.byName = make(map[string][]string)
	root := r.scope.Root()
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d == nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if rel != "." && r.shouldIgnore(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".md") {
			return nil
		}
		base := filepath.Base(path)
		r.byName[base] = append(r.byName[base], path)
		return nil
	})
	r.built = true
}

// shouldIgnore reports whether a scope-relative path matches any
// configured ignore pattern.
func (r *Resolver) shouldIgnore(relPath string) bool {
	for _, pattern := range r.ignorePatterns {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "/*")
			if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// fuzzyCandidates returns the single cached basename closest to base
// (distance ≤ 3), or nil when none qualifies; used to populate
// Result.Candidates/Suggestion on a not_found result.
func (r *Resolver) fuzzyCandidates(base string) []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	best, ok := bestFuzzyMatch(base, names, 3)
	if !ok {
		return nil
	}
	return []string{best}
}

func decodeTarget(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func stripFragment(s string) string {
	if idx := strings.Index(s, "#"); idx != -1 {
		return s[:idx]
	}
	return s
}
