package recovery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
)

// Candidates derives the ordered list of alternative URLs to probe when
// originalURL fails. Priority order:
//
//  1. the URL stripped of query parameters (expired presigned signatures)
//  2. the same key under each configured alternate region endpoint
//  3. the key with the "reassembled_" naming prefix toggled
//  4. per-part URLs, in case the object still exists only in chunk form
//
// The function is pure so the ordering can be tested without network I/O.
// Candidates never include the original URL itself and are de-duplicated.
func Candidates(originalURL string, cfg config.RecoveryConfig) []string {
	parsed, err := url.Parse(originalURL)
	if err != nil || parsed.Host == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{originalURL: true}
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	stripped := *parsed
	stripped.RawQuery = ""
	stripped.Fragment = ""
	add(stripped.String())

	for _, endpoint := range cfg.AltEndpoints {
		alt := stripped
		alt.Host = endpoint
		add(alt.String())
	}

	for _, variant := range togglePrefix(stripped.Path) {
		v := stripped
		v.Path = variant
		add(v.String())
	}

	limit := cfg.PartProbeLimit
	if limit <= 0 {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		part := stripped
		part.Path = fmt.Sprintf("%s.part%d", stripped.Path, i)
		add(part.String())
	}

	return out
}

// togglePrefix returns the path with the reassembled_ object-name prefix
// added or removed, covering filename drift between the catalog record and
// the actual stored key.
func togglePrefix(path string) []string {
	dir, base := splitKey(path)
	if strings.HasPrefix(base, "reassembled_") {
		return []string{dir + strings.TrimPrefix(base, "reassembled_")}
	}
	return []string{dir + "reassembled_" + base}
}

func splitKey(path string) (dir, base string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}
