package match

import (
	"testing"

	"rowmatch/internal/excel"

	"github.com/stretchr/testify/assert"
)

func TestMergeIndex_KeyAndResolve(t *testing.T) {
	table := tableOf("s",
		[]any{"ID", "Name", "Dept"},
		[]any{1, "Zhang", "Sales"},
		[]any{2, "Li", "Tech"},
		[]any{3, "Wang", nil},
	)
	table.Merges = []excel.Range{{MinRow: 3, MinCol: 3, MaxRow: 4, MaxCol: 3}}

	idx := newMergeIndex(table.Merges)

	assert.Equal(t, "Tech", idx.keyCell(table, 4, 3).Value)
	assert.Equal(t, "Sales", idx.keyCell(table, 2, 3).Value)
	assert.Nil(t, table.Cell(4, 3).Value)

	row := idx.resolveRow(table, 4, 3)
	assert.Equal(t, "Wang", row[1].Value)
	assert.Equal(t, "Tech", row[2].Value)
}

func TestRemapMerges(t *testing.T) {
	vertical := excel.Range{MinRow: 3, MinCol: 3, MaxRow: 5, MaxCol: 3}
	block := excel.Range{MinRow: 6, MinCol: 1, MaxRow: 7, MaxCol: 2}
	horizontal := excel.Range{MinRow: 8, MinCol: 4, MaxRow: 8, MaxCol: 6}
	header := excel.Range{MinRow: 1, MinCol: 1, MaxRow: 2, MaxCol: 1}

	tests := []struct {
		name   string
		ranges []excel.Range
		placed map[int]int
		want   []excel.Range
	}{
		{
			name:   "whole range matched",
			ranges: []excel.Range{vertical},
			placed: map[int]int{3: 2, 4: 3, 5: 4},
			want:   []excel.Range{{MinRow: 2, MinCol: 3, MaxRow: 4, MaxCol: 3}},
		},
		{
			name:   "partial run",
			ranges: []excel.Range{vertical},
			placed: map[int]int{4: 10, 5: 11},
			want:   []excel.Range{{MinRow: 10, MinCol: 3, MaxRow: 11, MaxCol: 3}},
		},
		{
			name:   "gap in source rows splits the range",
			ranges: []excel.Range{vertical},
			placed: map[int]int{3: 2, 5: 3},
			want:   nil,
		},
		{
			name:   "single matched row keeps multi-column span",
			ranges: []excel.Range{block},
			placed: map[int]int{7: 5},
			want:   []excel.Range{{MinRow: 5, MinCol: 1, MaxRow: 5, MaxCol: 2}},
		},
		{
			name:   "horizontal merge",
			ranges: []excel.Range{horizontal},
			placed: map[int]int{8: 4},
			want:   []excel.Range{{MinRow: 4, MinCol: 4, MaxRow: 4, MaxCol: 6}},
		},
		{
			name:   "header range skipped",
			ranges: []excel.Range{header},
			placed: map[int]int{2: 2},
			want:   nil,
		},
		{
			name:   "unmatched range dropped",
			ranges: []excel.Range{vertical},
			placed: map[int]int{9: 2},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remapMerges(tt.ranges, tt.placed, 1))
		})
	}
}

func TestHeaderMerges(t *testing.T) {
	ranges := []excel.Range{
		{MinRow: 2, MinCol: 1, MaxRow: 2, MaxCol: 3},
		{MinRow: 1, MinCol: 1, MaxRow: 2, MaxCol: 1},
		{MinRow: 3, MinCol: 1, MaxRow: 3, MaxCol: 2},
	}

	got := headerMerges(ranges, 2, 1)
	assert.Equal(t, []excel.Range{{MinRow: 1, MinCol: 1, MaxRow: 1, MaxCol: 3}}, got)
}
