package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	applicationName = "gray-logic-timedata"
)

// Client owns the InfluxDB connection shared by the AsyncWriter and the
// query Backend.
//
// Both retention tiers live in the same database; each is addressed as the
// bucket "<database>/<retention policy>".
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client influxdb2.Client
	cfg    config.InfluxDBConfig

	connected bool
	mu        sync.RWMutex
}

// Connect creates the client and verifies the server answers /ping.
//
// Parameters:
//   - ctx: Bounds the connectivity check
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: ErrConnectionFailed if the server cannot be reached
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	opts := influxdb2.DefaultOptions().SetApplicationName(applicationName)
	if cfg.Timeout > 0 {
		opts.SetHTTPRequestTimeout(uint(cfg.Timeout)) // #nosec G115 -- checked positive
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	return &Client{client: client, cfg: cfg, connected: true}, nil
}

// Close releases idle HTTP connections. Safe on a nil client and safe to
// call more than once.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		c.connected = false
		c.client.Close()
	}
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Bucket returns the bucket holding tier.
func (c *Client) Bucket(tier timedata.Tier) string {
	if tier == timedata.TierMax {
		return c.cfg.MaxBucket()
	}
	return c.cfg.AvgBucket()
}

// writeAPI returns the blocking write API of tier. The underlying client
// caches one instance per bucket.
func (c *Client) writeAPI(tier timedata.Tier) api.WriteAPIBlocking {
	return c.client.WriteAPIBlocking(c.cfg.Org, c.Bucket(tier))
}

func (c *Client) queryAPI() api.QueryAPI {
	return c.client.QueryAPI(c.cfg.Org)
}
