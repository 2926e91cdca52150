// Package uplink registers the server with an external service over gRPC.
package uplink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultTimeout bounds the registration call
const DefaultTimeout = 10 * time.Second

// ErrNotServing is returned when the remote end answers but is not serving
var ErrNotServing = errors.New("uplink is not serving")

// Options configures the uplink connection
type Options struct {
	Address string
	Key     string
	TLS     bool
	Timeout time.Duration
	// Service is the health service name checked on registration; empty
	// means the whole server.
	Service string
}

// Client is an established uplink connection
type Client struct {
	conn    *grpc.ClientConn
	health  healthpb.HealthClient
	service string
	timeout time.Duration
}

// bearerToken attaches the uplink key to every call
type bearerToken struct {
	key    string
	secure bool
}

func (b bearerToken) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.key}, nil
}

func (b bearerToken) RequireTransportSecurity() bool {
	return b.secure
}

// Dial creates the connection without contacting the remote end
func Dial(opts Options, dialOpts ...grpc.DialOption) (*Client, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("uplink address cannot be empty")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("uplink key cannot be empty")
	}

	transport := insecure.NewCredentials()
	if opts.TLS {
		transport = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	all := append([]grpc.DialOption{
		grpc.WithTransportCredentials(transport),
		grpc.WithPerRPCCredentials(bearerToken{key: opts.Key, secure: opts.TLS}),
	}, dialOpts...)

	conn, err := grpc.NewClient(opts.Address, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create uplink client for %s: %w", opts.Address, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		conn:    conn,
		health:  healthpb.NewHealthClient(conn),
		service: opts.Service,
		timeout: timeout,
	}, nil
}

// Register checks that the remote end accepts the key and is serving
func (c *Client) Register(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: c.service})
	if err != nil {
		return fmt.Errorf("uplink registration failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return nil
}

// Close releases the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Connect dials and registers. A nil client and nil error mean the uplink is
// disabled.
func Connect(ctx context.Context, opts Options, dialOpts ...grpc.DialOption) (*Client, error) {
	if opts.Address == "" {
		return nil, nil
	}

	client, err := Dial(opts, dialOpts...)
	if err != nil {
		return nil, err
	}
	if err := client.Register(ctx); err != nil {
		client.Close()
		return nil, err
	}

	log.Printf("Uplink registered with %s", opts.Address)
	return client, nil
}
