package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDerive(t *testing.T) {
	svc := NewFingerprintService()
	asOf := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	ip := "203.0.113.10"
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"

	t.Run("StableWithinDay", func(t *testing.T) {
		first := svc.Derive(ip, ua, asOf, BucketDaily)
		second := svc.Derive(ip, ua, asOf.Add(8*time.Hour), BucketDaily)
		assert.Equal(t, first, second)
		assert.Len(t, first, 64)
	})

	t.Run("ChangesAcrossDays", func(t *testing.T) {
		today := svc.Derive(ip, ua, asOf, BucketDaily)
		tomorrow := svc.Derive(ip, ua, asOf.Add(24*time.Hour), BucketDaily)
		assert.NotEqual(t, today, tomorrow)
	})

	t.Run("DayBoundaryIsUTC", func(t *testing.T) {
		// 23:30 UTC and 00:30 UTC next day are different buckets even
		// though a non-UTC zone would put them on the same local day.
		late := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
		early := late.Add(time.Hour)
		assert.NotEqual(t,
			svc.Derive(ip, ua, late, BucketDaily),
			svc.Derive(ip, ua, early, BucketDaily),
		)
	})

	t.Run("DistinctClientsDistinctDigests", func(t *testing.T) {
		a := svc.Derive(ip, ua, asOf, BucketDaily)
		b := svc.Derive("203.0.113.11", ua, asOf, BucketDaily)
		c := svc.Derive(ip, "other-agent", asOf, BucketDaily)
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, a, c)
	})

	t.Run("BucketsProduceDifferentLabels", func(t *testing.T) {
		daily := svc.Derive(ip, ua, asOf, BucketDaily)
		hourly := svc.Derive(ip, ua, asOf, BucketHourly)
		monthly := svc.Derive(ip, ua, asOf, BucketMonthly)
		persistent := svc.Derive(ip, ua, asOf, BucketPersistent)
		assert.NotEqual(t, daily, hourly)
		assert.NotEqual(t, daily, monthly)
		assert.NotEqual(t, daily, persistent)
	})

	t.Run("MissingAttributesFallBackToRandom", func(t *testing.T) {
		first := svc.Derive("", ua, asOf, BucketDaily)
		second := svc.Derive("", ua, asOf, BucketDaily)
		assert.Len(t, first, 64)
		assert.NotEqual(t, first, second)

		third := svc.Derive(ip, "", asOf, BucketDaily)
		assert.Len(t, third, 64)
	})
}

func TestMaskIP(t *testing.T) {
	t.Run("IPv4LastOctetZeroed", func(t *testing.T) {
		assert.Equal(t, "203.0.113.0", MaskIP("203.0.113.77"))
	})

	t.Run("IPv6Truncated", func(t *testing.T) {
		masked := MaskIP("2001:db8:85a3::8a2e:370:7334")
		assert.NotContains(t, masked, "7334")
	})

	t.Run("UnparseableInputRedacted", func(t *testing.T) {
		assert.NotEqual(t, "not-an-ip", MaskIP("not-an-ip"))
	})
}
