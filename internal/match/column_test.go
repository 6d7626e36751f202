package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		ref        string
		wantIndex  int
		wantHeader string
		wantErr    bool
	}{
		{ref: "C", wantIndex: 3},
		{ref: "c", wantIndex: 3},
		{ref: "AA", wantIndex: 27},
		{ref: " 3 ", wantIndex: 3},
		{ref: "12", wantIndex: 12},
		{ref: "部门", wantHeader: "部门"},
		{ref: "Patient ID", wantHeader: "Patient ID"},
		{ref: "Department", wantHeader: "Department"},
		{ref: "", wantErr: true},
		{ref: "   ", wantErr: true},
		{ref: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseColumn(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, got.Index)
			assert.Equal(t, tt.wantHeader, got.Header)
		})
	}
}

func TestColumnRef_Resolve(t *testing.T) {
	table := tableOf("员工数据",
		[]any{"ID", "姓名", "部门"},
		[]any{1, "张三", "销售部"},
	)

	ref, err := ParseColumn("部门")
	require.NoError(t, err)
	col, err := ref.Resolve(table, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, col)

	ref, err = ParseColumn("b")
	require.NoError(t, err)
	col, err = ref.Resolve(table, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, col)
	assert.Equal(t, "B", ref.String())

	ref, err = ParseColumn("职位")
	require.NoError(t, err)
	_, err = ref.Resolve(table, 1)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestColumnRef_ResolveFoldsWidth(t *testing.T) {
	table := tableOf("s", []any{"ＩＤ", "部门（新）"})

	ref, err := ParseColumn("部门(新)")
	require.NoError(t, err)
	col, err := ref.Resolve(table, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, col)

	ref, err = ParseColumn("id")
	require.NoError(t, err)
	assert.Equal(t, 238, ref.Index, "short letter runs are column letters")
}
