package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(TimeLayout, s)
	require.NoError(t, err)
	return ts
}

func TestFilter(t *testing.T) {
	rows := []Row{
		{Tier: "MotoGP", Category: "FP1", Start: "2024-04-26T10:45:00+0200"},
		{Tier: "Moto2", Category: "FP1", Start: "2024-04-26T09:55:00+0200"},
		{Tier: "MotoGP Sprint", Category: "SPR", Start: "2024-04-27T15:00:00+0200"},
		{Tier: "Moto3", Category: "RAC", Start: "2024-04-28T11:00:00+0200"},
		{Tier: "MotoGP", Category: "RAC", Start: "2024-04-28T14:00:00+0200"},
	}

	tests := []struct {
		name string
		tier string
		want []string
	}{
		{"prefix includes suffixed labels", "MotoGP", []string{"FP1", "SPR", "RAC"}},
		{"distinct class", "Moto2", []string{"FP1"}},
		{"no match", "MotoE", []string{}},
		{"empty tier matches all", "", []string{"FP1", "FP1", "SPR", "RAC", "RAC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(rows, tt.tier)
			categories := make([]string, 0, len(got))
			for _, row := range got {
				assert.True(t, len(row.Tier) >= len(tt.tier) && row.Tier[:len(tt.tier)] == tt.tier)
				categories = append(categories, row.Category)
			}
			assert.Equal(t, tt.want, categories)
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	rows := []Row{
		{Tier: "A", Start: "3"},
		{Tier: "B", Start: "2"},
		{Tier: "A x", Start: "1"},
	}
	assert.Equal(t, []Row{rows[0], rows[2]}, Filter(rows, "A"))
	assert.Len(t, rows, 3, "input must not be modified")
}

func TestResolve(t *testing.T) {
	rows := []Row{
		{Tier: "A", Category: "FP1", Start: "2024-04-26T09:45:00+0200"},
		{Tier: "A", Category: "Q2", Start: "2024-04-27T10:50:00+0200"},
		{Tier: "A", Category: "Race", Start: "2024-04-28T14:00:00+0200"},
	}

	w, err := Resolve(rows)
	require.NoError(t, err)

	assert.True(t, w.Begin.Equal(mustParse(t, "2024-04-26T09:45:00+0200")))
	assert.True(t, w.End.Equal(mustParse(t, "2024-04-28T14:00:00+0200")), "end is the last row, not the second")
	assert.Equal(t,
		"2024-04-26T09:45:00+0200 FP1 A\n"+
			"2024-04-27T10:50:00+0200 Q2 A\n"+
			"2024-04-28T14:00:00+0200 Race A",
		w.Description)
}

func TestResolveKeepsEncounterOrder(t *testing.T) {
	// Rows are not sorted: begin is whatever comes first.
	rows := []Row{
		{Tier: "A", Category: "Race", Start: "2024-04-28T14:00:00+0200"},
		{Tier: "A", Category: "FP1", Start: "2024-04-26T09:45:00+0200"},
	}

	w, err := Resolve(rows)
	require.NoError(t, err)
	assert.True(t, w.Begin.Equal(mustParse(t, rows[0].Start)))
	assert.True(t, w.End.Equal(mustParse(t, rows[1].Start)))
}

func TestResolveIncomplete(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{"no rows", nil},
		{"single row", []Row{{Tier: "A", Category: "Race", Start: "2024-04-28T14:00:00+0200"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncomplete))
		})
	}
}

func TestResolveBadTimestamp(t *testing.T) {
	rows := []Row{
		{Tier: "A", Category: "FP1", Start: "2024-04-26T09:45:00+0200"},
		{Tier: "A", Category: "Race", Start: "Sunday 2pm"},
	}

	_, err := Resolve(rows)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrIncomplete))
	assert.Contains(t, err.Error(), "Race")
}

func TestDuration(t *testing.T) {
	begin := mustParse(t, "2024-04-26T09:45:00+0200")

	tests := []struct {
		name string
		end  string
		full bool
		want time.Duration
	}{
		{"multi-day keeps sub-day remainder", "2024-04-28T14:00:00+0200", false, 4*time.Hour + 15*time.Minute + DefaultBuffer},
		{"multi-day full elapsed", "2024-04-28T14:00:00+0200", true, 52*time.Hour + 15*time.Minute + DefaultBuffer},
		{"same day", "2024-04-26T14:00:00+0200", false, 4*time.Hour + 15*time.Minute + DefaultBuffer},
		{"exactly one day", "2024-04-27T09:45:00+0200", false, DefaultBuffer},
		{"end before begin wraps like a day remainder", "2024-04-26T08:45:00+0200", false, 23*time.Hour + DefaultBuffer},
		{"offsets are honoured", "2024-04-26T09:45:00+0000", false, 2*time.Hour + DefaultBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{Begin: begin, End: mustParse(t, tt.end)}
			assert.Equal(t, tt.want, Duration(w, DefaultBuffer, tt.full))
		})
	}
}

func TestDurationSeconds(t *testing.T) {
	w := Window{
		Begin: mustParse(t, "2024-04-26T09:45:00+0200"),
		End:   mustParse(t, "2024-04-28T14:00:00+0200"),
	}
	assert.Equal(t, float64(15300+7200), Duration(w, DefaultBuffer, false).Seconds())
}
