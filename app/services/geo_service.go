package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/forze-dev/QRHUB-Server/config"
	"github.com/forze-dev/QRHUB-Server/models"
)

// Location is the resolved geolocation of a scanning client.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

// UnknownLocation is recorded when every lookup path has failed.
func UnknownLocation() Location {
	return Location{Country: models.GeoUnknown, City: models.GeoUnknown, Region: models.GeoUnknown}
}

// LocalLocation is recorded for private, loopback and invalid addresses.
func LocalLocation() Location {
	return Location{Country: models.GeoLocal, City: models.GeoLocal, Region: models.GeoLocal}
}

// GeolocationService maps public IPs to coarse geolocation. Resolve
// never returns an error: every failure mode has a named fallback so
// a slow or dead provider cannot block the redirect.
type GeolocationService interface {
	Resolve(ctx context.Context, ip string) Location
	// ResolveBatch serves backfill jobs; it is not on the scan path.
	ResolveBatch(ctx context.Context, ips []string) map[string]Location
}

type httpGeoService struct {
	cfg    config.GeolocationConfig
	client *http.Client
	logger *log.Logger
}

func NewGeolocationService(cfg config.GeolocationConfig, logger *log.Logger) GeolocationService {
	return &httpGeoService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// primaryResponse is the ip-api.com JSON shape.
type primaryResponse struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
}

// secondaryResponse is the ipwho.is JSON shape.
type secondaryResponse struct {
	Success bool   `json:"success"`
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

func (s *httpGeoService) Resolve(ctx context.Context, ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified() {
		return LocalLocation()
	}

	if loc, err := s.lookupPrimary(ctx, ip); err == nil {
		return loc
	} else {
		s.logger.Printf("geolocation primary lookup failed for %s: %v", MaskIP(ip), err)
	}

	if loc, err := s.lookupSecondary(ctx, ip); err == nil {
		return loc
	} else {
		s.logger.Printf("geolocation secondary lookup failed for %s: %v", MaskIP(ip), err)
	}

	return UnknownLocation()
}

func (s *httpGeoService) ResolveBatch(ctx context.Context, ips []string) map[string]Location {
	out := make(map[string]Location, len(ips))
	for _, ip := range ips {
		if _, done := out[ip]; done {
			continue
		}
		out[ip] = s.Resolve(ctx, ip)
	}
	return out
}

func (s *httpGeoService) lookupPrimary(ctx context.Context, ip string) (Location, error) {
	body, err := s.get(ctx, fmt.Sprintf(s.cfg.PrimaryURL, ip))
	if err != nil {
		return Location{}, err
	}
	var res primaryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return Location{}, fmt.Errorf("failed to decode primary provider response: %w", err)
	}
	if res.Status != "success" {
		return Location{}, fmt.Errorf("primary provider returned status %q", res.Status)
	}
	return normalize(res.Country, res.City, res.RegionName), nil
}

func (s *httpGeoService) lookupSecondary(ctx context.Context, ip string) (Location, error) {
	body, err := s.get(ctx, fmt.Sprintf(s.cfg.SecondaryURL, ip))
	if err != nil {
		return Location{}, err
	}
	var res secondaryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return Location{}, fmt.Errorf("failed to decode secondary provider response: %w", err)
	}
	if !res.Success {
		return Location{}, fmt.Errorf("secondary provider reported failure")
	}
	return normalize(res.Country, res.City, res.Region), nil
}

func (s *httpGeoService) get(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<16))
}

func normalize(country, city, region string) Location {
	loc := Location{Country: country, City: city, Region: region}
	if loc.Country == "" {
		loc.Country = models.GeoUnknown
	}
	if loc.City == "" {
		loc.City = models.GeoUnknown
	}
	if loc.Region == "" {
		loc.Region = models.GeoUnknown
	}
	return loc
}
