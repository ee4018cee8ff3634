package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotOrdinal(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"01:00-02:00", 13.0},
		{"08:30-09:15", 8.5},
		{"10.15-11.00", 10.25},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseSlotOrdinal(tc.label), "label %q", tc.label)
	}
}

func TestIsConsecutivePair(t *testing.T) {
	a := TimeSlot{TimeLabel: "08:30-09:15"}
	b := TimeSlot{TimeLabel: "09:15-10:00"}
	c := TimeSlot{TimeLabel: "10:15-11:00"}

	assert.True(t, IsConsecutivePair(a, b))
	assert.False(t, IsConsecutivePair(b, c), "a gap between end and start labels is not consecutive")
}

func TestFindConsecutiveRuns(t *testing.T) {
	slots := []TimeSlot{
		{ID: 1, TimeLabel: "08:30-09:15", Ordinal: ParseSlotOrdinal("08:30-09:15")},
		{ID: 2, TimeLabel: "09:15-10:00", Ordinal: ParseSlotOrdinal("09:15-10:00")},
		{ID: 3, TimeLabel: "10:15-11:00", Ordinal: ParseSlotOrdinal("10:15-11:00")},
	}
	runs := FindConsecutiveRuns(slots, 2)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0][0].ID)
	assert.Equal(t, 2, runs[0][1].ID)
}

func TestFindConsecutiveRunsTooFewSlots(t *testing.T) {
	slots := []TimeSlot{{ID: 1, TimeLabel: "08:30-09:15"}}
	assert.Nil(t, FindConsecutiveRuns(slots, 2))
}

func TestGroupByDaySortsByOrdinal(t *testing.T) {
	slots := []TimeSlot{
		{ID: 2, Day: Monday, TimeLabel: "10:00-11:00", Ordinal: ParseSlotOrdinal("10:00-11:00")},
		{ID: 1, Day: Monday, TimeLabel: "09:00-10:00", Ordinal: ParseSlotOrdinal("09:00-10:00")},
	}
	grouped := GroupByDay(slots)
	monday := grouped[Monday]
	require.Len(t, monday, 2)
	assert.Equal(t, 1, monday[0].ID)
	assert.Equal(t, 2, monday[1].ID)
}
