package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/forze-dev/QRHUB-Server/repository"
	"github.com/redis/go-redis/v9"
)

// ScanRateLimiter bounds scans per (IP, QR code) within a sliding
// window to blunt abuse of the unauthenticated scan endpoint.
//
// The limiter FAILS OPEN: if neither Redis nor the scan store can
// answer, the scan is allowed. Redirect availability outranks strict
// abuse prevention.
type ScanRateLimiter interface {
	Allow(ctx context.Context, ip string, qrCodeID uint) bool
}

type scanRateLimiter struct {
	scanRepo repository.ScanEventRepository
	redis    *redis.Client
	limit    int64
	window   time.Duration
	logger   *log.Logger
}

// checkAndIncrement counts this hit against a fixed window keyed on
// (qrCodeID, ip) and reports the running total in one round trip.
var checkAndIncrement = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewScanRateLimiter(scanRepo repository.ScanEventRepository, rc *redis.Client, limit int64, window time.Duration, logger *log.Logger) ScanRateLimiter {
	return &scanRateLimiter{
		scanRepo: scanRepo,
		redis:    rc,
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

func (l *scanRateLimiter) Allow(ctx context.Context, ip string, qrCodeID uint) bool {
	if l.redis != nil {
		count, err := l.allowRedis(ctx, ip, qrCodeID)
		if err == nil {
			return count <= l.limit
		}
		l.logger.Printf("rate limiter redis path failed for %s, falling back to store: %v", MaskIP(ip), err)
	}

	count, err := l.scanRepo.CountRecent(ctx, qrCodeID, ip, time.Now().UTC().Add(-l.window))
	if err != nil {
		// Fail open: a broken store read must not reject legitimate scans.
		l.logger.Printf("rate limiter store read failed for %s, allowing scan: %v", MaskIP(ip), err)
		return true
	}
	return count < l.limit
}

func (l *scanRateLimiter) allowRedis(ctx context.Context, ip string, qrCodeID uint) (int64, error) {
	key := fmt.Sprintf("qrhub:scanrl:%d:%s", qrCodeID, ip)
	return checkAndIncrement.Run(ctx, l.redis, []string{key}, int(l.window.Seconds())).Int64()
}
