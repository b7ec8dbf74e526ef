package repo

import (
	"fmt"
	"os"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreMatcher decides whether a repository-relative path is excluded from
// status and staging. Patterns come from .pocketignore plus the configured
// ignore_patterns; the .pocket directory is always excluded.
type IgnoreMatcher struct {
	matcher *gitignore.GitIgnore
}

// IgnoreMatcher compiles the repository's current ignore rules.
func (r *Repository) IgnoreMatcher() (*IgnoreMatcher, error) {
	base := append([]string{pocketDirName + "/"}, r.Config.Core.IgnorePatterns...)

	path := r.ignoreFilePath()
	if _, err := os.Stat(path); err == nil {
		m, err := gitignore.CompileIgnoreFileAndLines(path, base...)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", ignoreFileName, err)
		}
		return &IgnoreMatcher{matcher: m}, nil
	}
	return &IgnoreMatcher{matcher: gitignore.CompileIgnoreLines(base...)}, nil
}

// Matches reports whether the path is ignored.
func (m *IgnoreMatcher) Matches(relPath string) bool {
	return m.matcher.MatchesPath(relPath)
}

// IgnorePatterns returns the patterns currently in .pocketignore, in file
// order, without comments or blank lines.
func (r *Repository) IgnorePatterns() ([]string, error) {
	data, err := os.ReadFile(r.ignoreFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", ignoreFileName, err)
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// AddIgnorePattern appends a pattern to .pocketignore unless already present.
func (r *Repository) AddIgnorePattern(pattern string) error {
	patterns, err := r.IgnorePatterns()
	if err != nil {
		return err
	}
	for _, p := range patterns {
		if p == pattern {
			return nil
		}
	}
	return r.writeIgnoreFile(append(patterns, pattern))
}

// RemoveIgnorePattern removes a pattern from .pocketignore.
func (r *Repository) RemoveIgnorePattern(pattern string) error {
	patterns, err := r.IgnorePatterns()
	if err != nil {
		return err
	}
	kept := patterns[:0]
	found := false
	for _, p := range patterns {
		if p == pattern {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("pattern %q is not in %s", pattern, ignoreFileName)
	}
	return r.writeIgnoreFile(kept)
}

func (r *Repository) writeIgnoreFile(patterns []string) error {
	var b strings.Builder
	for _, p := range patterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return writeFileAtomic(r.ignoreFilePath(), []byte(b.String()), 0o644)
}
