package paginate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	limit, offset := ParseParams(nil)
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, DefaultOffset, offset)

	limit, offset = ParseParams(map[string]any{"limit": "10", "offset": "20"})
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = ParseParams(map[string]any{"limit": "-1", "offset": "x"})
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, DefaultOffset, offset)
}

func TestArrayAndWrap(t *testing.T) {
	items := []any{"a", "b", "c", "d", "e"}

	assert.Equal(t, []any{"c", "d"}, Array(items, 2, 2))
	assert.Equal(t, []any{"e"}, Array(items, 4, 10))
	assert.Empty(t, Array(items, 5, 1))

	out, err := Wrap(Array(items, 0, 2), len(items), 0, 2)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, 5, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasMore)
	assert.Equal(t, 2, resp.Pagination.NextOffset)

	out, err = Wrap(Array(items, 4, 2), len(items), 4, 2)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.False(t, resp.Pagination.HasMore)
	assert.Equal(t, -1, resp.Pagination.NextOffset)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                   string
		total, size, page      int
		wantMax, wantPage      int
		wantFrom, wantTo       int
	}{
		{"empty", 0, 10, 1, 0, 1, 0, 0},
		{"exact pages", 20, 10, 2, 2, 2, 10, 20},
		{"partial last page", 23, 10, 3, 3, 3, 20, 23},
		{"page past the end clamps", 23, 10, 9, 3, 3, 20, 23},
		{"page below one clamps", 23, 10, 0, 3, 1, 0, 10},
		{"default size", 15, 0, 1, 2, 1, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.size, tt.page)
			assert.Equal(t, tt.wantMax, p.MaxPages)
			assert.Equal(t, tt.wantPage, p.PageNumber)
			assert.Equal(t, tt.wantFrom, p.From)
			assert.Equal(t, tt.wantTo, p.To)
		})
	}
}
