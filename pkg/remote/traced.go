// This file contains the tracing decorator that opens a span around every
// remote client operation.
package remote

import (
	"context"

	"github.com/marmos91/davmount/internal/telemetry"
)

// Traced wraps a Client so that every operation runs inside a span named
// after the underlying HTTP method. When tracing is disabled the client is
// returned unwrapped.
func Traced(c Client) Client {
	if !telemetry.IsEnabled() {
		return c
	}
	return &tracedClient{next: c}
}

// TracedFactory wraps a Factory so that every client it builds is traced.
// When tracing is disabled f is returned unchanged.
func TracedFactory(f Factory) Factory {
	if !telemetry.IsEnabled() {
		return f
	}
	return func(cfg ClientConfig) (Client, error) {
		c, err := f(cfg)
		if err != nil {
			return nil, err
		}
		return Traced(c), nil
	}
}

// tracedClient opens one span per call on the wrapped client. Span names
// carry the wire method (PROPFIND, GET, ...) so traces read like the
// traffic a packet capture would show.
type tracedClient struct {
	next Client
}

func (c *tracedClient) List(ctx context.Context, path string) ([]Stat, error) {
	ctx, span := telemetry.StartRemoteSpan(ctx, "PROPFIND", path, telemetry.RemoteDepth("1"))
	defer span.End()

	children, err := c.next.List(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
	} else {
		telemetry.SetAttributes(ctx, telemetry.FSEntries(len(children)))
	}
	return children, err
}

func (c *tracedClient) Stat(ctx context.Context, path string) (*Stat, error) {
	ctx, span := telemetry.StartRemoteSpan(ctx, "PROPFIND", path, telemetry.RemoteDepth("0"))
	defer span.End()

	st, err := c.next.Stat(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return st, err
}

func (c *tracedClient) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	ctx, span := telemetry.StartRemoteSpan(ctx, "GET", path,
		telemetry.FSOffset(offset), telemetry.FSLength(length))
	defer span.End()

	data, err := c.next.GetRange(ctx, path, offset, length)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return data, err
}

func (c *tracedClient) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, span := telemetry.StartRemoteSpan(ctx, "GET", path)
	defer span.End()

	data, err := c.next.Get(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
	} else {
		telemetry.SetAttributes(ctx, telemetry.FSSize(int64(len(data))))
	}
	return data, err
}

func (c *tracedClient) Put(ctx context.Context, path string, data []byte) error {
	ctx, span := telemetry.StartRemoteSpan(ctx, "PUT", path, telemetry.FSSize(int64(len(data))))
	defer span.End()

	err := c.next.Put(ctx, path, data)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (c *tracedClient) MkCol(ctx context.Context, path string) error {
	ctx, span := telemetry.StartRemoteSpan(ctx, "MKCOL", path)
	defer span.End()

	err := c.next.MkCol(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (c *tracedClient) Delete(ctx context.Context, path string) error {
	ctx, span := telemetry.StartRemoteSpan(ctx, "DELETE", path)
	defer span.End()

	err := c.next.Delete(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (c *tracedClient) Move(ctx context.Context, src, dst string) error {
	ctx, span := telemetry.StartRemoteSpan(ctx, "MOVE", src,
		telemetry.FSOldPath(src), telemetry.FSNewPath(dst))
	defer span.End()

	err := c.next.Move(ctx, src, dst)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (c *tracedClient) Copy(ctx context.Context, src, dst string) error {
	ctx, span := telemetry.StartRemoteSpan(ctx, "COPY", src,
		telemetry.FSOldPath(src), telemetry.FSNewPath(dst))
	defer span.End()

	err := c.next.Copy(ctx, src, dst)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}
