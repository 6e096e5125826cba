package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items a single page can return.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points into an ordered result set. Scope ties the cursor to the query
// (the search term) that produced it.
type Cursor struct {
	Offset int
	Scope  string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%d|%s", cursor.Offset, cursor.Scope)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("invalid cursor offset %q", parts[0])
	}
	return &Cursor{Offset: offset, Scope: parts[1]}, nil
}

// Slice returns the page of items selected by params together with the cursor
// for the following page ("" on the last page). A cursor minted for a different
// scope is rejected.
func Slice[T any](items []T, scope string, params Params) ([]T, string, error) {
	limit := NormalizeLimit(params.Limit)

	start := 0
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		if cursor.Scope != scope {
			return nil, "", fmt.Errorf("cursor does not belong to this query")
		}
		start = cursor.Offset
	}
	if start >= len(items) {
		return []T{}, "", nil
	}

	end := start + limit
	if end >= len(items) {
		return items[start:], "", nil
	}
	return items[start:end], EncodeCursor(Cursor{Offset: end, Scope: scope}), nil
}
