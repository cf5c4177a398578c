package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid ISO date",
			input: "2024-03-15",
			want:  "2024-03-15",
		},
		{
			name:    "malformed date",
			input:   "2024-13-99",
			wantErr: true,
		},
		{
			name:    "not a date",
			input:   "yesterday",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDayArithmetic(t *testing.T) {
	d := NewDay(2024, time.March, 15)

	assert.Equal(t, "2024-03-16", d.AddDays(1).String())
	assert.Equal(t, "2024-03-14", d.AddDays(-1).String())
	assert.Equal(t, "2024-04-14", d.AddDays(30).String())

	// crosses the leap day
	feb := NewDay(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", feb.AddDays(1).String())
	assert.Equal(t, "2024-03-01", feb.AddDays(2).String())
}

func TestDayDaysUntil(t *testing.T) {
	a := NewDay(2024, time.March, 1)
	b := NewDay(2024, time.March, 8)

	assert.Equal(t, 7, a.DaysUntil(b))
	assert.Equal(t, -7, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestDayMonthBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		day        Day
		wantStart  string
		wantEnd    string
		wantInMonth int
	}{
		{
			name:        "mid March",
			day:         NewDay(2024, time.March, 15),
			wantStart:   "2024-03-01",
			wantEnd:     "2024-03-31",
			wantInMonth: 31,
		},
		{
			name:        "leap February",
			day:         NewDay(2024, time.February, 10),
			wantStart:   "2024-02-01",
			wantEnd:     "2024-02-29",
			wantInMonth: 29,
		},
		{
			name:        "non-leap February",
			day:         NewDay(2023, time.February, 10),
			wantStart:   "2023-02-01",
			wantEnd:     "2023-02-28",
			wantInMonth: 28,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.day.StartOfMonth().String())
			assert.Equal(t, tt.wantEnd, tt.day.EndOfMonth().String())
			assert.Equal(t, tt.wantInMonth, tt.day.DaysInMonth())
		})
	}
}

func TestDayZeroValue(t *testing.T) {
	var d Day
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
	assert.False(t, NewDay(2024, time.January, 1).IsZero())
}

func TestDayComparisons(t *testing.T) {
	a := NewDay(2024, time.March, 1)
	b := NewDay(2024, time.March, 2)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(NewDay(2024, time.March, 1)))
	assert.False(t, a.Equal(b))
}
