package match

import (
	"testing"

	"rowmatch/internal/excel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_AcrossFiles(t *testing.T) {
	lookup := make(KeySet)
	lookup.Add("技术部")
	matcher := &Matcher{Lookup: lookup, Column: ColumnRef{Index: 3}, HeaderRow: 1, Dates: fixedRules()}

	first := tableOf("day1",
		[]any{"ID", "姓名", "部门"},
		[]any{1, "张三", "销售部"},
	)
	second := staffTable()
	second.Merges = append(second.Merges, excel.Range{MinRow: 1, MinCol: 1, MaxRow: 1, MaxCol: 2})
	third := tableOf("day3",
		[]any{"编号", "名字", "科室"},
		[]any{9, "孙八", "技术部"},
		[]any{10, "周九", "技术部"},
	)
	third.Merges = []excel.Range{{MinRow: 2, MinCol: 3, MaxRow: 3, MaxCol: 3}}

	agg := NewAggregator("匹配结果")
	assert.Equal(t, 0, agg.Total())

	for _, table := range []*excel.Table{first, second, third} {
		sm, err := matcher.MatchTable(table)
		require.NoError(t, err)
		agg.Add(sm)
	}

	out := agg.Table()
	assert.Equal(t, "匹配结果", out.Name)
	assert.Equal(t, 4, agg.Total())
	assert.Equal(t, 5, out.MaxRow())

	// header comes from the first file that contributed rows
	assert.Equal(t, "ID", out.Cell(1, 1).Value)
	assert.Equal(t, "入职日期", out.Cell(1, 4).Value)

	assert.Equal(t, "李四", out.Cell(2, 2).Value)
	assert.Equal(t, "王五", out.Cell(3, 2).Value)
	assert.Equal(t, "孙八", out.Cell(4, 2).Value)
	assert.Equal(t, "周九", out.Cell(5, 2).Value)

	assert.Equal(t, []excel.Range{
		{MinRow: 1, MinCol: 1, MaxRow: 1, MaxCol: 2},
		{MinRow: 2, MinCol: 3, MaxRow: 3, MaxCol: 3},
		{MinRow: 4, MinCol: 3, MaxRow: 5, MaxCol: 3},
	}, out.Merges)
}

func TestAggregator_IgnoresEmptyMatches(t *testing.T) {
	agg := NewAggregator("out")

	assert.Equal(t, 0, agg.Add(nil))
	assert.Equal(t, 0, agg.Add(&SheetMatch{Header: []excel.Cell{{Value: "x"}}}))
	assert.Equal(t, 0, agg.Total())
	assert.Equal(t, 0, agg.Table().MaxRow())
}
