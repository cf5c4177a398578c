package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases input",
			input: "SPENT Last 7 Days",
			want:  "spent last 7 days",
		},
		{
			name:  "outflow typos",
			input: "mar outflw and outflo and outfloww",
			want:  "mar outflow and outflow and outflow",
		},
		{
			name:  "inflow typos",
			input: "inflw inflo infloww",
			want:  "inflow inflow inflow",
		},
		{
			name:  "transaction typos",
			input: "transcation tranaction trnsaction count",
			want:  "transaction transaction transaction count",
		},
		{
			name:  "greeting shorthand",
			input: "hlo hlw hii hiii",
			want:  "hello hello hi hi",
		},
		{
			name:  "whole word only",
			input: "workflow is not outflw",
			want:  "workflow is not outflow",
		},
		{
			name:  "untouched text",
			input: "balance this month",
			want:  "balance this month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"outflw last 7 days",
		"HII there",
		"trnsaction count for mar",
		"spent last month",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "Normalize must be idempotent for %q", input)
	}
}
