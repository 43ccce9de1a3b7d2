// Package cache memoizes parsed documents for the lifetime of one
// command invocation and keeps the external on-disk session markers,
// which persist across invocations.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/citeweave/citeweave/internal/markdown"
)

// parseResult is either a successfully parsed document or the error
// that a prior attempt to read/parse it produced — cached either way
// so a broken file is never re-read within the same run.
type parseResult struct {
	doc *markdown.ParsedDocument
	err error
}

// ParsedFileCache maps canonical absolute path to ParsedDocument,
// guaranteeing at-most-one parse per path per command execution. The
// core's concurrency model is single-threaded cooperative (see the
// command-level design), so this cache carries no locking.
type ParsedFileCache struct {
	entries map[string]parseResult
}

func NewParsedFileCache() *ParsedFileCache {
	return &ParsedFileCache{entries: make(map[string]parseResult)}
}

// Get returns the ParsedDocument for path, parsing and caching it on
// first access. path is canonicalized (symlinks resolved, made
// absolute) before use as the cache key.
func (c *ParsedFileCache) Get(path string) (*markdown.ParsedDocument, error) {
	key, keyErr := canonicalPath(path)
	if keyErr != nil {
		return nil, keyErr
	}

	if result, ok := c.entries[key]; ok {
		return result.doc, result.err
	}

	doc, err := parseFile(key)
	c.entries[key] = parseResult{doc: doc, err: err}
	return doc, err
}

// Len reports how many distinct paths have been parsed (successfully
// or not) so far this run.
func (c *ParsedFileCache) Len() int { return len(c.entries) }

func parseFile(absPath string) (*markdown.ParsedDocument, error) {
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", absPath, err)
	}
	return markdown.Parse(source, absPath), nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The file may not exist yet (e.g. a resolver candidate that
		// never panned out); fall back to the cleaned absolute path so
		// callers still get a stable cache key.
		return abs, nil
	}
	return resolved, nil
}
