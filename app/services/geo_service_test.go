package services

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/forze-dev/QRHUB-Server/config"
	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/stretchr/testify/assert"
)

func newTestGeoService(primary, secondary string) GeolocationService {
	return NewGeolocationService(config.GeolocationConfig{
		PrimaryURL:   primary + "?ip=%s",
		SecondaryURL: secondary + "?ip=%s",
		Timeout:      2 * time.Second,
	}, log.New(os.Stdout, "", log.LstdFlags))
}

func TestGeoResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin"}`))
		}))
		defer primary.Close()

		svc := newTestGeoService(primary.URL, "http://127.0.0.1:1")
		loc := svc.Resolve(ctx, "203.0.113.10")
		assert.Equal(t, "Germany", loc.Country)
		assert.Equal(t, "Berlin", loc.City)
		assert.Equal(t, "Berlin", loc.Region)
	})

	t.Run("FallsBackToSecondary", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer primary.Close()
		secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"country":"France","city":"Paris","region":"Ile-de-France"}`))
		}))
		defer secondary.Close()

		svc := newTestGeoService(primary.URL, secondary.URL)
		loc := svc.Resolve(ctx, "203.0.113.10")
		assert.Equal(t, "France", loc.Country)
		assert.Equal(t, "Paris", loc.City)
	})

	t.Run("PrimaryFailStatusFallsBack", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"fail"}`))
		}))
		defer primary.Close()
		secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"country":"Spain","city":"Madrid","region":"Madrid"}`))
		}))
		defer secondary.Close()

		svc := newTestGeoService(primary.URL, secondary.URL)
		loc := svc.Resolve(ctx, "203.0.113.10")
		assert.Equal(t, "Spain", loc.Country)
	})

	t.Run("BothProvidersDownReturnsUnknown", func(t *testing.T) {
		svc := newTestGeoService("http://127.0.0.1:1", "http://127.0.0.1:1")
		loc := svc.Resolve(ctx, "203.0.113.10")
		assert.Equal(t, UnknownLocation(), loc)
	})

	t.Run("MissingFieldsNormalizedToUnknown", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","country":"Japan"}`))
		}))
		defer primary.Close()

		svc := newTestGeoService(primary.URL, "http://127.0.0.1:1")
		loc := svc.Resolve(ctx, "203.0.113.10")
		assert.Equal(t, "Japan", loc.Country)
		assert.Equal(t, models.GeoUnknown, loc.City)
		assert.Equal(t, models.GeoUnknown, loc.Region)
	})

	t.Run("PrivateAndLoopbackAreLocal", func(t *testing.T) {
		svc := newTestGeoService("http://127.0.0.1:1", "http://127.0.0.1:1")
		assert.Equal(t, LocalLocation(), svc.Resolve(ctx, "127.0.0.1"))
		assert.Equal(t, LocalLocation(), svc.Resolve(ctx, "10.1.2.3"))
		assert.Equal(t, LocalLocation(), svc.Resolve(ctx, "192.168.0.5"))
		assert.Equal(t, LocalLocation(), svc.Resolve(ctx, ""))
		assert.Equal(t, LocalLocation(), svc.Resolve(ctx, "not-an-ip"))
	})

	t.Run("ResolveBatchDeduplicates", func(t *testing.T) {
		calls := 0
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin"}`))
		}))
		defer primary.Close()

		svc := newTestGeoService(primary.URL, "http://127.0.0.1:1")
		out := svc.ResolveBatch(ctx, []string{"203.0.113.10", "203.0.113.10", "203.0.113.11"})
		assert.Len(t, out, 2)
		assert.Equal(t, 2, calls)
	})
}
