// Package services provides external service integrations and technical concerns for the scan pipeline
package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
	"time"
)

// FingerprintBucket controls the re-identification window of a derived
// fingerprint. Daily is the bucket scan uniqueness is counted on; the
// other windows exist for alternate correlation needs.
type FingerprintBucket string

const (
	BucketHourly     FingerprintBucket = "hourly"
	BucketDaily      FingerprintBucket = "daily"
	BucketMonthly    FingerprintBucket = "monthly"
	BucketPersistent FingerprintBucket = "persistent"
)

// FingerprintService derives stable anonymous visitor identities from
// request attributes. Pure computation: no network or storage access.
type FingerprintService interface {
	Derive(ip, userAgent string, asOf time.Time, bucket FingerprintBucket) string
}

type fingerprintService struct{}

func NewFingerprintService() FingerprintService {
	return &fingerprintService{}
}

// Derive hashes ip|userAgent|bucket-label into a fixed-length hex
// digest. Date bucketing uses UTC so the uniqueness window does not
// depend on server deployment timezone. A request missing ip or
// user-agent gets a random digest: tracking accuracy degrades but the
// redirect never blocks.
func (s *fingerprintService) Derive(ip, userAgent string, asOf time.Time, bucket FingerprintBucket) string {
	if ip == "" || userAgent == "" {
		return randomDigest()
	}

	var label string
	u := asOf.UTC()
	switch bucket {
	case BucketHourly:
		label = u.Format("2006-01-02T15")
	case BucketMonthly:
		label = u.Format("2006-01")
	case BucketPersistent:
		label = ""
	default:
		label = u.Format("2006-01-02")
	}

	sum := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + label))
	return hex.EncodeToString(sum[:])
}

// randomDigest returns an unpredictable stand-in fingerprint of the
// same shape as a real one.
func randomDigest() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the process is in serious trouble;
		// still never fail the scan over a fingerprint.
		sum := sha256.Sum256([]byte(time.Now().String()))
		return hex.EncodeToString(sum[:])
	}
	return hex.EncodeToString(buf)
}

// MaskIP redacts an IP address for log output: the last IPv4 octet is
// zeroed, IPv6 is truncated to its /32 prefix. The full address is
// still hashed and stored, but must never appear in a log line.
func MaskIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return strings.Join(strings.Split(v4.String(), ".")[:3], ".") + ".0"
	}
	parts := strings.Split(parsed.String(), ":")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ":") + "::"
}
