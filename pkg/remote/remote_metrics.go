// This file contains metrics-related types and the instrumentation
// decorator that observes every client operation.
package remote

import (
	"context"
	"errors"
	"time"
)

// RemoteMetrics provides observability for remote client operations.
//
// Implementations can collect metrics about call latency, outcomes, and
// payload throughput. This interface is optional - pass nil to Instrumented
// to disable metrics collection with zero overhead.
type RemoteMetrics interface {
	// RecordOperation records a completed remote call.
	//
	// Parameters:
	//   - op: Operation name (e.g., "list", "get_range", "move")
	//   - duration: Time taken by the call, including the network round trip
	//   - errorCode: Classified failure ("not_found", "forbidden",
	//     "unreachable", "other"), empty if the call succeeded
	RecordOperation(op string, duration time.Duration, errorCode string)

	// RecordBytesTransferred records payload bytes moved by a call.
	//
	// Parameters:
	//   - op: Operation name (e.g., "get", "put")
	//   - direction: "read" or "write"
	//   - bytes: Number of payload bytes
	RecordBytesTransferred(op string, direction string, bytes int)
}

// Instrumented wraps a Client so that every operation is reported to m.
// Passing a nil RemoteMetrics returns the client unwrapped.
func Instrumented(c Client, m RemoteMetrics) Client {
	if m == nil {
		return c
	}
	return &instrumentedClient{next: c, metrics: m}
}

// InstrumentedFactory wraps a Factory so that every client it builds is
// instrumented with m. Passing a nil RemoteMetrics returns f unchanged.
func InstrumentedFactory(f Factory, m RemoteMetrics) Factory {
	if m == nil {
		return f
	}
	return func(cfg ClientConfig) (Client, error) {
		c, err := f(cfg)
		if err != nil {
			return nil, err
		}
		return Instrumented(c, m), nil
	}
}

// instrumentedClient times each call on the wrapped client and classifies
// its outcome. All mounts built by one factory share the same metrics, so
// labels carry the operation name, never the mount or the path.
type instrumentedClient struct {
	next    Client
	metrics RemoteMetrics
}

func (c *instrumentedClient) List(ctx context.Context, path string) ([]Stat, error) {
	start := time.Now()
	children, err := c.next.List(ctx, path)
	c.metrics.RecordOperation("list", time.Since(start), errorCodeLabel(err))
	return children, err
}

func (c *instrumentedClient) Stat(ctx context.Context, path string) (*Stat, error) {
	start := time.Now()
	st, err := c.next.Stat(ctx, path)
	c.metrics.RecordOperation("stat", time.Since(start), errorCodeLabel(err))
	return st, err
}

func (c *instrumentedClient) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	start := time.Now()
	data, err := c.next.GetRange(ctx, path, offset, length)
	c.metrics.RecordOperation("get_range", time.Since(start), errorCodeLabel(err))
	if err == nil {
		c.metrics.RecordBytesTransferred("get_range", "read", len(data))
	}
	return data, err
}

func (c *instrumentedClient) Get(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()
	data, err := c.next.Get(ctx, path)
	c.metrics.RecordOperation("get", time.Since(start), errorCodeLabel(err))
	if err == nil {
		c.metrics.RecordBytesTransferred("get", "read", len(data))
	}
	return data, err
}

func (c *instrumentedClient) Put(ctx context.Context, path string, data []byte) error {
	start := time.Now()
	err := c.next.Put(ctx, path, data)
	c.metrics.RecordOperation("put", time.Since(start), errorCodeLabel(err))
	if err == nil {
		c.metrics.RecordBytesTransferred("put", "write", len(data))
	}
	return err
}

func (c *instrumentedClient) MkCol(ctx context.Context, path string) error {
	start := time.Now()
	err := c.next.MkCol(ctx, path)
	c.metrics.RecordOperation("mkcol", time.Since(start), errorCodeLabel(err))
	return err
}

func (c *instrumentedClient) Delete(ctx context.Context, path string) error {
	start := time.Now()
	err := c.next.Delete(ctx, path)
	c.metrics.RecordOperation("delete", time.Since(start), errorCodeLabel(err))
	return err
}

func (c *instrumentedClient) Move(ctx context.Context, src, dst string) error {
	start := time.Now()
	err := c.next.Move(ctx, src, dst)
	c.metrics.RecordOperation("move", time.Since(start), errorCodeLabel(err))
	return err
}

func (c *instrumentedClient) Copy(ctx context.Context, src, dst string) error {
	start := time.Now()
	err := c.next.Copy(ctx, src, dst)
	c.metrics.RecordOperation("copy", time.Since(start), errorCodeLabel(err))
	return err
}

// errorCodeLabel maps a client error to its metric label. Success maps to
// the empty string.
func errorCodeLabel(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		switch remoteErr.Code {
		case ErrNotFound:
			return "not_found"
		case ErrForbidden:
			return "forbidden"
		case ErrUnreachable:
			return "unreachable"
		}
	}
	return "other"
}
