package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidShortCode(t *testing.T) {
	valid := []string{"abc123", "summer-sale", "X7k2mP9q", strings.Repeat("a", 20)}
	for _, code := range valid {
		assert.True(t, IsValidShortCode(code), code)
	}

	invalid := []string{
		"",
		"abc",                   // too short
		strings.Repeat("a", 21), // too long
		"has space",
		"semi;colon",
		"sql'inject",
		"slash/code",
		"dot.code",
		"percent%25",
	}
	for _, code := range invalid {
		assert.False(t, IsValidShortCode(code), code)
	}
}

func TestGenerateShortCode(t *testing.T) {
	t.Run("RespectsLength", func(t *testing.T) {
		code, err := GenerateShortCode(10)
		require.NoError(t, err)
		assert.Len(t, code, 10)
		assert.True(t, IsValidShortCode(code))
	})

	t.Run("OutOfRangeLengthUsesDefault", func(t *testing.T) {
		code, err := GenerateShortCode(0)
		require.NoError(t, err)
		assert.Len(t, code, ShortCodeDefaultLength)

		code, err = GenerateShortCode(100)
		require.NoError(t, err)
		assert.Len(t, code, ShortCodeDefaultLength)
	})

	t.Run("ExcludesLookAlikes", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateShortCode(ShortCodeDefaultLength)
			require.NoError(t, err)
			assert.NotContains(t, code, "0")
			assert.NotContains(t, code, "O")
			assert.NotContains(t, code, "1")
			assert.NotContains(t, code, "l")
			assert.NotContains(t, code, "I")
		}
	})

	t.Run("CodesDiffer", func(t *testing.T) {
		a, err := GenerateShortCode(ShortCodeDefaultLength)
		require.NoError(t, err)
		b, err := GenerateShortCode(ShortCodeDefaultLength)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestDayStartUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	t.Run("TruncatesToMidnight", func(t *testing.T) {
		ts := time.Date(2025, 3, 10, 18, 45, 12, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DayStartUTC(ts))
	})

	t.Run("ConvertsZoneBeforeTruncating", func(t *testing.T) {
		// 02:00 on March 11 in UTC+5 is still March 10 in UTC.
		ts := time.Date(2025, 3, 11, 2, 0, 0, 0, loc)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DayStartUTC(ts))
	})
}
