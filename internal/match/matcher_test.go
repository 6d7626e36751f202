package match

import (
	"testing"
	"time"

	"rowmatch/internal/excel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staffTable() *excel.Table {
	table := tableOf("员工数据",
		[]any{"ID", "姓名", "部门", "入职日期"},
		[]any{1, "张三", "销售部", 45413},
		[]any{2, "李四", "技术部", 45414},
		[]any{3, "王五", nil, 45415},
		[]any{4, "赵六", "市场部", 45416},
		[]any{5, "钱七", "销售部", 45417},
	)
	table.Merges = []excel.Range{{MinRow: 3, MinCol: 3, MaxRow: 4, MaxCol: 3}}
	return table
}

func TestMatcher_MatchTable(t *testing.T) {
	lookup := make(KeySet)
	lookup.Add("技术部")
	lookup.Add("财务部")

	matcher := &Matcher{
		Lookup:    lookup,
		Column:    ColumnRef{Index: 3},
		HeaderRow: 1,
		Dates:     fixedRules(),
	}

	got, err := matcher.MatchTable(staffTable())
	require.NoError(t, err)

	assert.Equal(t, 3, got.KeyColumn)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, map[int]bool{4: true}, got.DateColumns)
	assert.Equal(t, "姓名", got.Header[1].Value)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, 3, got.Rows[0].SourceRow)
	assert.Equal(t, 4, got.Rows[1].SourceRow)
	assert.Equal(t, "李四", got.Rows[0].Cells[1].Value)
	assert.Equal(t, "王五", got.Rows[1].Cells[1].Value)
	assert.Equal(t, "技术部", got.Rows[1].Cells[2].Value, "merged key is resolved into the row")

	date, ok := got.Rows[0].Cells[3].Value.(time.Time)
	require.True(t, ok)
	assert.Equal(t, "2024-05-02", date.Format("2006-01-02"))
	assert.Equal(t, `m"月"d"日"`, got.Rows[0].Cells[3].Format)
}

func TestMatcher_NumericKeysAndHeaderRow(t *testing.T) {
	table := tableOf("s",
		[]any{"Daily report"},
		[]any{"Patient", "Name"},
		[]any{"1001", "A"},
		[]any{1002, "B"},
		[]any{1003, "C"},
		[]any{"Patient", "D"},
	)

	lookup := make(KeySet)
	lookup.Add("1001")
	lookup.Add("1002")
	lookup.Add("Patient")

	ref, err := ParseColumn("Patient")
	require.NoError(t, err)
	matcher := &Matcher{Lookup: lookup, Column: ref, HeaderRow: 2, Dates: fixedRules()}

	got, err := matcher.MatchTable(table)
	require.NoError(t, err)

	var rows []int
	for _, r := range got.Rows {
		rows = append(rows, r.SourceRow)
	}
	assert.Equal(t, []int{3, 4, 6}, rows, "header row is never a data row")
	assert.Equal(t, "Patient", got.Header[0].Value)
}

func TestMatcher_UnknownHeader(t *testing.T) {
	matcher := &Matcher{Lookup: make(KeySet), Column: ColumnRef{Header: "nope"}, HeaderRow: 1}

	_, err := matcher.MatchTable(staffTable())
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
