package domain

import (
	"encoding/base64"
	"strconv"
)

// Page size bounds for list operations. Out-of-range requests are
// clamped rather than rejected.
const (
	DefaultMaxResults = 50
	MaxMaxResults     = 500
)

// PageRequest carries the pagination inputs of a list operation. The
// token is an opaque base64 offset so clients cannot depend on its
// shape.
type PageRequest struct {
	MaxResults int
	PageToken  string
}

// Offset decodes the page token. Empty or malformed tokens restart the
// listing from the top instead of failing the request.
func (p PageRequest) Offset() int {
	raw, err := base64.StdEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Limit clamps MaxResults into [1, MaxMaxResults], defaulting when unset.
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return DefaultMaxResults
	case p.MaxResults > MaxMaxResults:
		return MaxMaxResults
	default:
		return p.MaxResults
	}
}

// EncodePageToken renders a positive offset as an opaque token.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// NextPageToken returns the token for the page after the current one,
// or "" when the listing is exhausted.
func NextPageToken(offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return EncodePageToken(next)
}
