package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("accepts common forms", func(t *testing.T) {
		cases := map[string]string{
			"2026-01-15": "2026-01-15",
			"2026/1/5":   "2026-01-05",
			"2026.12.31": "2026-12-31",
			"01/15/2026": "2026-01-15",
			"1-5-2026":   "2026-01-05",
			"01.15.2026": "2026-01-15",
			" 01/15/2026 ": "2026-01-15",
		}
		for raw, want := range cases {
			got, ok := Normalize(raw)
			require.True(t, ok, "input %q", raw)
			assert.Equal(t, want, got, "input %q", raw)
		}
	})

	t.Run("disambiguates day-first when the first field cannot be a month", func(t *testing.T) {
		got, ok := Normalize("13/02/2026")
		require.True(t, ok)
		assert.Equal(t, "2026-02-13", got)
	})

	t.Run("defaults month-first on ambiguous input", func(t *testing.T) {
		got, ok := Normalize("02/03/26")
		require.True(t, ok)
		assert.Equal(t, "2026-02-03", got)

		got, ok = Normalize("03/04/2026")
		require.True(t, ok)
		assert.Equal(t, "2026-03-04", got)
	})

	t.Run("maps two-digit years around the pivot", func(t *testing.T) {
		got, ok := Normalize("1/2/49")
		require.True(t, ok)
		assert.Equal(t, "2049-01-02", got)

		got, ok = Normalize("1/2/50")
		require.True(t, ok)
		assert.Equal(t, "1950-01-02", got)
	})

	t.Run("rejects unusable input", func(t *testing.T) {
		rejected := []string{
			"",
			"not a date",
			"2026-01",
			"1/2/3/4",
			"2026-13-01", // month out of range
			"2026-00-10",
			"2026-01-32", // day out of range
			"1899-12-31", // year below range
			"2101-01-01", // year above range
			"2026-02-30", // not a real calendar date
			"02/29/2025", // not a leap year
			"1/2/123",    // 3-digit year
			"20260115",
			"2026--15",
		}
		for _, raw := range rejected {
			_, ok := Normalize(raw)
			assert.False(t, ok, "input %q should be rejected", raw)
		}
	})

	t.Run("accepts leap day in a leap year", func(t *testing.T) {
		got, ok := Normalize("02/29/2024")
		require.True(t, ok)
		assert.Equal(t, "2024-02-29", got)
	})

	t.Run("canonical form is a fixed point", func(t *testing.T) {
		first, ok := Normalize("13/2/26")
		require.True(t, ok)

		second, ok := Normalize(first)
		require.True(t, ok)
		assert.Equal(t, first, second)
	})
}
