// Package notion is a read-only client for the Notion block API.
package notion

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	compactID = regexp.MustCompile(`[0-9a-fA-F]{32}$`)
	dashedID  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ParseID accepts a block or page id in compact or dashed form, or a
// notion.so URL whose last path segment ends with the id, and returns the
// dashed form.
func ParseID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty page id")
	}
	candidate := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("parse page url: %w", err)
		}
		if p := u.Query().Get("p"); p != "" {
			candidate = p
		} else {
			candidate = strings.TrimRight(u.Path, "/")
			if i := strings.LastIndex(candidate, "/"); i >= 0 {
				candidate = candidate[i+1:]
			}
		}
	}
	m := dashedID.FindString(candidate)
	if m == "" {
		m = compactID.FindString(candidate)
	}
	if m == "" {
		return "", fmt.Errorf("no page id in %q", s)
	}
	id, err := uuid.Parse(m)
	if err != nil {
		return "", fmt.Errorf("invalid page id %q: %w", m, err)
	}
	return id.String(), nil
}

// CompactID strips dashes from id.
func CompactID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
