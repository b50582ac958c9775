package trigger

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

func matchesEventTypes(types []string, action string) bool {
	if len(types) == 0 {
		return true
	}
	if action == "" {
		return false
	}
	for _, t := range types {
		if strings.EqualFold(strings.TrimSpace(t), action) {
			return true
		}
	}
	return false
}

func matchesBranchFilters(includes, excludes []string, branch string) bool {
	if len(includes) == 0 && len(excludes) == 0 {
		return true
	}
	if branch == "" {
		return false
	}

	if len(includes) > 0 && !matchesBranchPatternList(includes, branch) {
		return false
	}
	if len(excludes) > 0 && matchesBranchPatternList(excludes, branch) {
		return false
	}
	return true
}

func matchesPaths(includes, excludes, files []string) bool {
	if len(includes) == 0 && len(excludes) == 0 {
		return true
	}

	if len(includes) > 0 {
		for _, file := range files {
			if pathMatchesAny(includes, file) && !pathMatchesAny(excludes, file) {
				return true
			}
		}
		return false
	}

	// No include filters; ensure at least one file survives the excludes.
	if len(files) == 0 {
		return true
	}

	for _, file := range files {
		if !pathMatchesAny(excludes, file) {
			return true
		}
	}

	return false
}

func pathMatchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		normPattern := normalizePathPattern(pattern)
		if normPattern == "" {
			continue
		}
		match, err := doublestar.Match(normPattern, path)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func matchesPatternList(patterns []string, candidate string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		norm := strings.TrimSpace(pattern)
		if norm == "" {
			continue
		}
		matched, err := doublestar.Match(norm, candidate)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}

	return false
}

func matchesBranchPatternList(patterns []string, branch string) bool {
	if len(patterns) == 0 {
		return true
	}
	candidates := []string{branch}
	if !strings.HasPrefix(branch, "refs/heads/") && branch != "" {
		candidates = append(candidates, "refs/heads/"+branch)
	}

	for _, candidate := range candidates {
		if matchesPatternList(patterns, candidate) {
			return true
		}
	}
	return false
}

func normalizePaths(files []string) []string {
	out := make([]string, 0, len(files))
	seen := map[string]struct{}{}
	for _, file := range files {
		norm := normalizePathPattern(file)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func normalizePathPattern(p string) string {
	if p == "" {
		return ""
	}
	norm := filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(norm, "./") {
		norm = strings.TrimPrefix(norm, "./")
	}
	for strings.HasPrefix(norm, "/") {
		norm = strings.TrimPrefix(norm, "/")
	}
	return norm
}

func asStringSlice(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return []string{strings.TrimSpace(v)}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func splitRef(ref string) (branch string, tag string) {
	if strings.HasPrefix(ref, "refs/heads/") {
		return strings.TrimPrefix(ref, "refs/heads/"), ""
	}
	if strings.HasPrefix(ref, "refs/tags/") {
		return "", strings.TrimPrefix(ref, "refs/tags/")
	}
	return strings.TrimSpace(ref), ""
}
