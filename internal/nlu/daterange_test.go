package nlu

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hisabkitab/hisab/internal/model"
)

var testToday = model.NewDay(2024, time.March, 15)

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name         string
		q            string
		wantStart    string
		wantEnd      string
		wantExplicit bool
	}{
		{
			name:         "two explicit dates",
			q:            "between 2024-01-01 and 2024-01-31",
			wantStart:    "2024-01-01",
			wantEnd:      "2024-01-31",
			wantExplicit: true,
		},
		{
			name:         "single explicit date",
			q:            "on 2024-02-10",
			wantStart:    "2024-02-10",
			wantEnd:      "2024-02-10",
			wantExplicit: true,
		},
		{
			name:         "swapped explicit dates",
			q:            "2024-01-31 to 2024-01-01",
			wantStart:    "2024-01-01",
			wantEnd:      "2024-01-31",
			wantExplicit: true,
		},
		{
			name:         "explicit span clamped to 366 days",
			q:            "2020-01-01 to 2024-03-01",
			wantStart:    "2023-03-02",
			wantEnd:      "2024-03-01",
			wantExplicit: true,
		},
		{
			name:         "malformed explicit date falls back to default",
			q:            "spent on 2024-99-99",
			wantStart:    "2024-02-15",
			wantEnd:      "2024-03-15",
			wantExplicit: false,
		},
		{
			name:         "today",
			q:            "spent today",
			wantStart:    "2024-03-15",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "yesterday",
			q:            "spent yesterday",
			wantStart:    "2024-03-14",
			wantEnd:      "2024-03-14",
			wantExplicit: true,
		},
		{
			name:         "last N days",
			q:            "spent last 10 days",
			wantStart:    "2024-03-06",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "last N days clamps above 366",
			q:            "spent last 999 days",
			wantStart:    "2023-03-16",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "past week",
			q:            "spent past week",
			wantStart:    "2024-03-09",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "last week",
			q:            "outflow last week",
			wantStart:    "2024-03-09",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "past month window",
			q:            "spent past month",
			wantStart:    "2024-02-15",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "this month",
			q:            "spent this month",
			wantStart:    "2024-03-01",
			wantEnd:      "2024-03-15",
			wantExplicit: true,
		},
		{
			name:         "last calendar month",
			q:            "spent last month",
			wantStart:    "2024-02-01",
			wantEnd:      "2024-02-29",
			wantExplicit: true,
		},
		{
			name:         "no temporal phrase uses default window",
			q:            "mar outflow",
			wantStart:    "2024-02-15",
			wantEnd:      "2024-03-15",
			wantExplicit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRange(tt.q, testToday)
			assert.Equal(t, tt.wantStart, got.Start.String())
			assert.Equal(t, tt.wantEnd, got.End.String())
			assert.Equal(t, tt.wantExplicit, got.Explicit)
		})
	}
}

func TestResolveRangeLastNDaysExactLength(t *testing.T) {
	for n := 1; n <= 366; n++ {
		q := fmt.Sprintf("spent last %d days", n)
		got := ResolveRange(q, testToday)
		assert.True(t, got.Explicit)
		assert.Equal(t, testToday.String(), got.End.String())
		assert.Equal(t, n, got.Days(), "last %d days must cover exactly %d days", n, n)
	}
}

func TestRangeDaysMinimumOne(t *testing.T) {
	r := Range{Start: testToday, End: testToday}
	assert.Equal(t, 1, r.Days())
}
