package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// WalkFunc is called once per non-ignored regular file found by Walk.
type WalkFunc func(relPath string, content []byte) error

// Walk enumerates every regular file under root that is not excluded by
// .gitignore, .git/info/exclude, or the user's global ignore file
// ($XDG_CONFIG_HOME/git/ignore, else ~/.config/git/ignore; a custom
// core.excludesFile setting is not read), and is not itself inside .git. For each surviving file it reads the full
// content and invokes fn.
func Walk(root string, fn WalkFunc) error {
	patterns, err := loadIgnorePatterns(root)
	if err != nil {
		return fmt.Errorf("load ignore patterns: %w", err)
	}

	matcher := gitignore.NewMatcher(patterns)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}

		if relPath == "." {
			return nil
		}

		parts := strings.Split(filepath.ToSlash(relPath), "/")

		if d.IsDir() {
			if parts[0] == ".git" {
				return filepath.SkipDir
			}

			if matcher.Match(parts, true) {
				return filepath.SkipDir
			}

			return nil
		}

		if matcher.Match(parts, false) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // I/O failure on a single file is skipped, not fatal (§7).
		}

		return fn(filepath.ToSlash(relPath), content)
	})
}

// loadIgnorePatterns reads the user's global ignore file, .git/info/exclude,
// and .gitignore files along the path from root down, in that order of
// increasing precedence, mirroring the sources a real Git checkout
// consults when deciding whether a path is tracked.
func loadIgnorePatterns(root string) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern

	globalPath := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		globalPath = filepath.Join(xdg, "git", "ignore")
	} else if home, err := os.UserHomeDir(); err == nil {
		globalPath = filepath.Join(home, ".config", "git", "ignore")
	}

	if globalPath != "" {
		if lines, err := readPatternLines(globalPath); err == nil {
			patterns = append(patterns, parsePatternLines(nil, lines)...)
		}
	}

	excludePath := filepath.Join(root, ".git", "info", "exclude")
	if lines, err := readPatternLines(excludePath); err == nil {
		patterns = append(patterns, parsePatternLines(nil, lines)...)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == ".git" && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Name() != ".gitignore" {
			return nil
		}

		dir, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}

		var domain []string
		if dir != "." {
			domain = strings.Split(filepath.ToSlash(dir), "/")
		}

		lines, readErr := readPatternLines(path)
		if readErr != nil {
			return nil
		}

		patterns = append(patterns, parsePatternLines(domain, lines)...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return patterns, nil
}

func readPatternLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return strings.Split(string(data), "\n"), nil
}

func parsePatternLines(domain []string, lines []string) []gitignore.Pattern {
	patterns := make([]gitignore.Pattern, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}

	return patterns
}
