package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"trimmed string", "  技术部 ", "技术部"},
		{"integral float", 3.0, "3"},
		{"fraction", 2.5, "2.5"},
		{"int", 42, "42"},
		{"bool", true, "TRUE"},
		{"date", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "2025-05-01"},
		{"date time", time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC), "2025-05-01 08:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.value))
		})
	}
}

func TestBuildLookupSet(t *testing.T) {
	table := tableOf("部门数据",
		[]any{"序号", "部门名称", "负责人"},
		[]any{1, "技术部", "陈经理"},
		[]any{2, "财务部", "王经理"},
		[]any{3, nil, "刘经理"},
		[]any{4, "技术部", "周经理"},
	)

	keys := BuildLookupSet(table, 2)

	assert.Equal(t, 3, keys.Len())
	assert.True(t, keys.Contains("部门名称"), "header row is part of the set")
	assert.True(t, keys.Contains("技术部"))
	assert.True(t, keys.Contains("财务部"))
	assert.False(t, keys.Contains(""))

	numeric := BuildLookupSet(table, 1)
	assert.True(t, numeric.Contains("3"))
	assert.False(t, numeric.Contains("3.0"))
}
