package influxdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

func TestConnect(t *testing.T) {
	f := newFakeServer(t)
	client := connectFake(t, f)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := &fakeServer{Server: srv}
	_, err := Connect(context.Background(), f.config())
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose(t *testing.T) {
	f := newFakeServer(t)
	client := connectFake(t, f)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close = %v, want ErrNotConnected", err)
	}

	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

func TestBucket(t *testing.T) {
	f := newFakeServer(t)
	client := connectFake(t, f)

	if got := client.Bucket(timedata.TierAverage); got != "timedata/avg" {
		t.Errorf("Bucket(avg) = %q, want timedata/avg", got)
	}
	if got := client.Bucket(timedata.TierMax); got != "timedata/max" {
		t.Errorf("Bucket(max) = %q, want timedata/max", got)
	}
}
