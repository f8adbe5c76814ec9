package domain

import (
	"strings"
	"time"
)

// maxCursorTimeLen is the longest timestamp DecodeCursor will try to parse
// (a twelve-digit expanded year with nanoseconds and a numeric offset).
const maxCursorTimeLen = len("+292277026596-12-04T15:30:07.999999999+07:00")

// Cursor is a keyset pagination position: CreatedAt orders the collection and
// ID breaks ties between items created in the same millisecond.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor serializes a position as "<ISO-8601 ms UTC>:<id>".
func EncodeCursor(createdAt time.Time, id string) string {
	return FormatTimestamp(createdAt) + ":" + id
}

// Encode is EncodeCursor applied to c.
func (c Cursor) Encode() string {
	return EncodeCursor(c.CreatedAt, c.ID)
}

// DecodeCursor parses a token produced by EncodeCursor. It reports false for
// any malformed token and never panics, so client-supplied values can be fed
// to it directly.
//
// The separator is the last ':' whose left side is a valid timestamp and whose
// right side is not blank. Starting from the last colon keeps ids that contain
// colons intact. The id is returned untrimmed.
func DecodeCursor(token string) (Cursor, bool) {
	if token == "" {
		return Cursor{}, false
	}

	last := strings.LastIndexByte(token, ':')
	if last <= 0 || last == len(token)-1 {
		return Cursor{}, false
	}
	if strings.TrimSpace(token[last+1:]) == "" {
		return Cursor{}, false
	}

	for i := last; i > 0; i = strings.LastIndexByte(token[:i], ':') {
		rawTime := token[:i]
		if len(rawTime) > maxCursorTimeLen {
			continue
		}
		if createdAt, ok := ParseTimestamp(rawTime); ok {
			return Cursor{CreatedAt: createdAt, ID: token[i+1:]}, true
		}
	}

	return Cursor{}, false
}
