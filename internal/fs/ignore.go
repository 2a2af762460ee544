package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// ignorePattern is one parsed exclusion rule.
type ignorePattern struct {
	glob      string
	matchPath bool // match against the whole entry name instead of its basename
	dirOnly   bool // pattern had a trailing '/'
}

// IgnoreMatcher decides which archive entries are left out.
//
// Patterns without '/' match an entry's basename at any depth. Patterns
// containing '/' match the whole entry name. A trailing '/' restricts a
// pattern to directories; an ignored directory is skipped with everything
// below it.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw patterns. Blank lines and lines starting with
// '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimRight(raw, "/")
		}
		p.glob = strings.TrimPrefix(raw, "/")
		p.matchPath = strings.Contains(raw, "/")
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Len returns the number of usable patterns.
func (m *IgnoreMatcher) Len() int {
	return len(m.patterns)
}

// Match reports whether the entry called name should be left out.
// name uses '/' separators, as in a tar header.
func (m *IgnoreMatcher) Match(name string, isDir bool) bool {
	name = strings.TrimSuffix(name, "/")
	base := path.Base(name)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := base
		if p.matchPath {
			subject = name
		}
		matched, err := path.Match(p.glob, subject)
		if err != nil {
			// malformed pattern never matches
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads one pattern per line from path.
// A missing file yields no patterns and no error.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
