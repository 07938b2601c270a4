package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	var gotCorrID string
	var gotLogger *zap.Logger

	handler := CorrelationIDMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Context().Value("correlation_id"); v != nil {
			gotCorrID = v.(string)
		}
		gotLogger, _ = r.Context().Value("logger").(*zap.Logger)
	}))

	req := httptest.NewRequest("GET", "/report/Delhi", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if gotCorrID == "" {
		t.Error("correlation_id not placed in context")
	}
	if gotLogger == nil {
		t.Error("request logger not placed in context")
	}
	if echoed := w.Header().Get("X-Correlation-ID"); echoed != gotCorrID {
		t.Errorf("X-Correlation-ID header = %q, want %q", echoed, gotCorrID)
	}
}

func TestCorrelationIDMiddleware_ReusesIncomingID(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	handler := CorrelationIDMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Correlation-ID", "caller-supplied-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if echoed := w.Header().Get("X-Correlation-ID"); echoed != "caller-supplied-id" {
		t.Errorf("X-Correlation-ID header = %q, want caller-supplied-id", echoed)
	}
}

func TestGetRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/report/Delhi", "/report/{city}"},
		{"/report/Delhi,%20India", "/report/{city}"},
		{"/unknown", "/unknown"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		if got := getRoute(req); got != tt.want {
			t.Errorf("getRoute(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		if got := statusCodeString(tt.code); got != tt.want {
			t.Errorf("statusCodeString(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMetricsMiddleware_TracksInFlight(t *testing.T) {
	observed := make(chan int64, 1)
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observed <- InFlightCount()
	}))

	before := InFlightCount()
	req := httptest.NewRequest("GET", "/report/Delhi", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	during := <-observed
	if during != before+1 {
		t.Errorf("in-flight during request = %d, want %d", during, before+1)
	}
	if after := InFlightCount(); after != before {
		t.Errorf("in-flight after request = %d, want %d", after, before)
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var hadDeadline bool
	handler := TimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/report/Delhi", nil))
	if !hadDeadline {
		t.Error("request context has no deadline")
	}
}

func TestTimeoutMiddleware_ExpiresContext(t *testing.T) {
	done := make(chan error, 1)
	handler := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		done <- r.Context().Err()
	}))

	go handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/report/Delhi", nil))

	select {
	case err := <-done:
		if err != context.DeadlineExceeded {
			t.Errorf("context error = %v, want DeadlineExceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("context never expired")
	}
}

func TestRateLimitMiddleware_Allows(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(100), 10)
	called := false
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/report/Delhi", nil))
	if !called {
		t.Error("request denied below the limit")
	}
}

func TestRateLimitMiddleware_Denies(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// First request drains the single-token bucket.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/report/Delhi", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/report/Delhi", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "RATE_LIMITED" {
		t.Errorf("error code = %q, want RATE_LIMITED", body.Error.Code)
	}
}

func TestRateLimitMiddleware_NilLimiterDisabled(t *testing.T) {
	called := false
	handler := RateLimitMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/report/Delhi", nil))
	if !called {
		t.Error("nil limiter should disable rate limiting")
	}
}

func TestInFlightTracker_WaitForZero(t *testing.T) {
	tracker := &InFlightTracker{}
	tracker.Increment()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tracker.WaitForZero(ctx, time.Millisecond); err == nil {
		t.Error("WaitForZero returned nil while a request was in flight")
	}

	tracker.Decrement()
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := tracker.WaitForZero(ctx2, time.Millisecond); err != nil {
		t.Errorf("WaitForZero after drain: %v", err)
	}
}
