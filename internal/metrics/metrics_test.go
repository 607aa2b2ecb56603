package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/soundchunk/pkg/observability"
)

func TestEditorHooks(t *testing.T) {
	ctx := context.Background()
	c := NewCollector(false)

	c.OnLayoutStart(ctx, "TB", 5)
	c.OnLayoutComplete(ctx, "TB", 10*time.Millisecond, nil)
	c.OnLayoutComplete(ctx, "LR", time.Millisecond, errors.New("boom"))
	c.OnConnect(ctx, true)
	c.OnConnect(ctx, true)
	c.OnConnect(ctx, false)
	c.OnRemove(ctx, 3)
	c.OnAudioTransition(ctx, "suspended", "running", nil)
	c.OnMissingDependency(ctx, "audioContext")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"layout TB ok", testutil.ToFloat64(c.layoutTotal.WithLabelValues("TB", "ok")), 1},
		{"layout LR error", testutil.ToFloat64(c.layoutTotal.WithLabelValues("LR", "error")), 1},
		{"connect accepted", testutil.ToFloat64(c.connectTotal.WithLabelValues("accepted")), 2},
		{"connect rejected", testutil.ToFloat64(c.connectTotal.WithLabelValues("rejected")), 1},
		{"removed", testutil.ToFloat64(c.removedTotal), 3},
		{"audio", testutil.ToFloat64(c.audioTotal.WithLabelValues("suspended", "running", "ok")), 1},
		{"missing", testutil.ToFloat64(c.missingDepTotal.WithLabelValues("audioContext")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCacheHooks(t *testing.T) {
	ctx := context.Background()
	c := NewCollector(false)

	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 128)
	c.OnCacheHit(ctx, "layout")
	c.OnCacheHit(ctx, "layout")

	if got := testutil.ToFloat64(c.cacheTotal.WithLabelValues("layout", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.cacheTotal.WithLabelValues("layout", "miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.cacheBytes.WithLabelValues("layout")); got != 128 {
		t.Errorf("bytes = %v, want 128", got)
	}
}

func TestServerHooksAndHandler(t *testing.T) {
	ctx := context.Background()
	c := NewCollector(false)

	c.OnRequest(ctx, "POST", "/api/v1/sessions", 201, 5*time.Millisecond)
	c.OnSessionCount(ctx, 2)

	if got := testutil.ToFloat64(c.sessions); got != 2 {
		t.Errorf("sessions = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`soundchunk_http_requests_total{code="201",method="POST",route="/api/v1/sessions"} 1`,
		"soundchunk_sessions 2",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestRegister(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	c := NewCollector(false)
	c.Register()

	if observability.Editor() != c {
		t.Error("editor hooks not registered")
	}
	if observability.Cache() != c {
		t.Error("cache hooks not registered")
	}
	if observability.Server() != c {
		t.Error("server hooks not registered")
	}
}
