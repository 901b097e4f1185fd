package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func TestPaginate_ThirteenItems(t *testing.T) {
	items := seq(13)

	first := Paginate(items, 10, "1")
	assert.Equal(t, 10, first.Len())
	assert.Equal(t, 2, first.NumPages)
	assert.Equal(t, items[:10], first.Items)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	second := Paginate(items, 10, "2")
	assert.Equal(t, 3, second.Len())
	assert.Equal(t, []int{11, 12, 13}, second.Items)
	assert.False(t, second.HasNext())
	assert.True(t, second.HasPrevious())
	assert.Equal(t, 1, second.PreviousNumber())
	assert.Equal(t, 11, second.StartIndex())
	assert.Equal(t, 13, second.EndIndex())
}

func TestPaginate_ClampPolicy(t *testing.T) {
	items := seq(13)

	tests := []struct {
		name       string
		requested  string
		wantNumber int
	}{
		{"absent", "", 1},
		{"not a number", "abc", 1},
		{"zero", "0", 1},
		{"negative", "-3", 1},
		{"float", "1.5", 1},
		{"padded", " 2 ", 2},
		{"exact last", "2", 2},
		{"past last", "3", 2},
		{"far past last", "999999", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(items, 10, tt.requested)
			assert.Equal(t, tt.wantNumber, page.Number)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	page := Paginate([]string{}, 10, "5")
	require.NotNil(t, page)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Equal(t, 0, page.Len())
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.StartIndex())
	assert.False(t, page.HasOtherPages())
	assert.Equal(t, []int{1}, page.PageRange())
}

func TestPaginator_Window(t *testing.T) {
	p := New(0)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	w := New(10).Window(20, "2")
	assert.Equal(t, 10, w.Offset())
	assert.Equal(t, 10, w.Limit())
	assert.Equal(t, 2, w.NumPages)
	assert.Equal(t, []int{1, 2}, w.PageRange())
	assert.Equal(t, 2, w.NextNumber())

	exact := New(5).NumPages(15)
	assert.Equal(t, 3, exact)
}
