package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCursor(t *testing.T) {
	createdAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		id        string
		expected  string
	}{
		{
			name:      "literal example",
			createdAt: createdAt,
			id:        "note-42",
			expected:  "2024-01-15T10:30:00.000Z:note-42",
		},
		{
			name:      "id with colon is kept verbatim",
			createdAt: createdAt,
			id:        "a:b",
			expected:  "2024-01-15T10:30:00.000Z:a:b",
		},
		{
			name:      "non-UTC instant is rendered in UTC",
			createdAt: time.Date(2024, 1, 15, 19, 30, 0, 0, time.FixedZone("JST", 9*60*60)),
			id:        "n1",
			expected:  "2024-01-15T10:30:00.000Z:n1",
		},
		{
			name:      "sub-millisecond precision is truncated",
			createdAt: createdAt.Add(123*time.Millisecond + 456*time.Microsecond),
			id:        "n2",
			expected:  "2024-01-15T10:30:00.123Z:n2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeCursor(tt.createdAt, tt.id))
		})
	}
}

func TestDecodeCursor_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty input", token: ""},
		{name: "no separator", token: "not-a-cursor"},
		{name: "empty timestamp segment", token: ":abc"},
		{name: "empty id segment", token: "2024-01-15T10:30:00.000Z:"},
		{name: "whitespace-only id", token: "2024-01-15T10:30:00.000Z:   "},
		{name: "unparseable timestamp", token: "not-a-date:abc"},
		{name: "only a colon", token: ":"},
		{name: "id ending in colon", token: "2024-01-15T10:30:00.000Z:a:"},
		{name: "truncated timestamp", token: "2024-01-15T10:30:abc"},
		{name: "garbage with many colons", token: "a:b:c:d:e:f"},
		{name: "invalid calendar date", token: "2024-02-30T10:30:00.000Z:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, ok := DecodeCursor(tt.token)
			assert.False(t, ok)
			assert.Equal(t, Cursor{}, cursor)
		})
	}
}

func TestDecodeCursor_Valid(t *testing.T) {
	createdAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		token      string
		wantTime   time.Time
		wantCursor string
	}{
		{
			name:       "literal example",
			token:      "2024-01-15T10:30:00.000Z:note-42",
			wantTime:   createdAt,
			wantCursor: "note-42",
		},
		{
			name:       "colon-bearing id",
			token:      "2024-01-15T10:30:00.000Z:a:b",
			wantTime:   createdAt,
			wantCursor: "a:b",
		},
		{
			name:       "id keeps surrounding whitespace",
			token:      "2024-01-15T10:30:00.000Z: note 42 ",
			wantTime:   createdAt,
			wantCursor: " note 42 ",
		},
		{
			name:       "timestamp without fractional seconds",
			token:      "2024-01-15T10:30:00Z:abc",
			wantTime:   createdAt,
			wantCursor: "abc",
		},
		{
			name:       "numeric offset is normalized to UTC",
			token:      "2024-01-15T11:30:00.000+01:00:abc",
			wantTime:   createdAt,
			wantCursor: "abc",
		},
		{
			name:       "bare date",
			token:      "2024-01-15:abc",
			wantTime:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			wantCursor: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, ok := DecodeCursor(tt.token)
			require.True(t, ok)
			assert.True(t, tt.wantTime.Equal(cursor.CreatedAt), "got %s", cursor.CreatedAt)
			assert.Equal(t, time.UTC, cursor.CreatedAt.Location())
			assert.Equal(t, tt.wantCursor, cursor.ID)
		})
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999_999_999, time.UTC),
		time.Date(2030, 6, 1, 0, 0, 0, 1, time.FixedZone("", -7*60*60)),
		time.Unix(0, 0),
		time.Date(0, 2, 29, 12, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(10000, 2, 29, 8, 0, 0, 5_000_000, time.UTC),
		time.Date(275760, 9, 13, 0, 0, 0, 0, time.UTC),
		time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(-271821, 4, 20, 0, 0, 0, 0, time.UTC),
	}
	ids := []string{
		"note-42",
		"a:b",
		"::x",
		"550e8400-e29b-41d4-a716-446655440000",
		"with space inside",
		"日本語",
	}

	for _, instant := range instants {
		for _, id := range ids {
			token := EncodeCursor(instant, id)
			cursor, ok := DecodeCursor(token)
			require.True(t, ok, "token %q", token)
			assert.True(t, instant.Truncate(time.Millisecond).Equal(cursor.CreatedAt), "token %q", token)
			assert.Equal(t, id, cursor.ID, "token %q", token)
		}
	}
}

func TestCursor_Encode(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ID: "note-42"}
	assert.Equal(t, "2024-01-15T10:30:00.000Z:note-42", c.Encode())
}
