package provider

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"runtime/debug"
	"sync"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/bufpool"
)

// connection serves the provider protocol on one host connection.
//
// Requests are handled concurrently: hosts interleave independent
// operations (a directory listing while a file uploads) and tag each with
// an ID, so replies need not arrive in request order. Writes are
// serialized so response and event frames never interleave on the wire.
type connection struct {
	server *Server
	conn   net.Conn

	requestSem chan struct{}  // Limits concurrent requests on this connection
	wg         sync.WaitGroup // Tracks in-flight requests for graceful shutdown
	writeMu    sync.Mutex     // Protects connection writes (frames must be serialized)
}

func newConnection(server *Server, conn net.Conn) *connection {
	return &connection{
		server:     server,
		conn:       conn,
		requestSem: make(chan struct{}, server.config.MaxRequestsPerConnection),
	}
}

// serve reads request frames until the host disconnects or the server
// shuts down. It recovers from panics so one misbehaving connection
// cannot crash the server.
//
// The connection closes when:
// - The context is cancelled (server shutdown)
// - The host closes its end
// - A frame violates the protocol (over-limit, malformed JSON)
// - An unrecoverable read or write error occurs
func (c *connection) serve(ctx context.Context) {
	defer c.handleConnectionClose()

	clientAddr := c.conn.RemoteAddr().String()
	ctx = logger.WithContext(ctx, logger.NewLogContext(clientAddr))

	for {
		// Check for shutdown before blocking on the next frame
		select {
		case <-ctx.Done():
			logger.Debug("connection closed by shutdown", logger.KeyClientAddr, clientAddr)
			return
		case <-c.server.shutdown:
			logger.Debug("connection closed by shutdown", logger.KeyClientAddr, clientAddr)
			return
		default:
		}

		frame, err := ReadFrame(c.conn, c.server.maxFrame())
		if err != nil {
			if err == io.EOF {
				logger.Debug("connection closed by host", logger.KeyClientAddr, clientAddr)
			} else if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				logger.Debug("connection read timed out", logger.KeyClientAddr, clientAddr, logger.Err(err))
			} else {
				logger.Debug("error reading request frame", logger.KeyClientAddr, clientAddr, logger.Err(err))
			}
			return
		}

		// Request.Options copies out of the frame during decode, so the
		// pooled buffer can go back before the request is handled.
		req := &Request{}
		err = json.Unmarshal(frame, req)
		bufpool.Put(frame)
		if err != nil {
			// The stream is framed, but a host that sends unparsable
			// JSON is broken; drop it rather than guess.
			logger.Warn("malformed request frame", logger.KeyClientAddr, clientAddr, logger.Err(err))
			return
		}

		// Acquire semaphore slot (blocks if at limit)
		c.requestSem <- struct{}{}

		c.wg.Add(1)
		go func(req *Request) {
			defer c.handleRequestPanic(clientAddr, req.ID)

			if err := c.handleRequest(ctx, req); err != nil {
				logger.Debug("error handling request",
					logger.KeyClientAddr, clientAddr, logger.KeyRequestID, req.ID, logger.Err(err))
			}
		}(req)
	}
}

// handleRequest dispatches one request and writes its response frame.
func (c *connection) handleRequest(ctx context.Context, req *Request) error {
	resp := c.server.dispatcher.Dispatch(ctx, req)

	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.writeFrame(payload)
}

// writeFrame writes one frame under the write lock. Used for both
// responses and pushed events.
func (c *connection) writeFrame(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.conn, payload)
}

// handleConnectionClose handles cleanup and panic recovery for the
// connection. Deferred in serve so the connection is closed and in-flight
// requests drained even if the read loop panics.
func (c *connection) handleConnectionClose() {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		logger.Error("panic in connection handler",
			logger.KeyClientAddr, c.conn.RemoteAddr().String(),
			"error", r,
			"stack", stack)
	}

	// Wait for in-flight requests before closing the connection
	c.wg.Wait()
	_ = c.conn.Close()
}

// handleRequestPanic releases the semaphore slot, decrements the wait
// group, and recovers from panics in the request handler.
func (c *connection) handleRequestPanic(clientAddr string, requestID uint64) {
	<-c.requestSem
	c.wg.Done()

	if r := recover(); r != nil {
		stack := string(debug.Stack())
		logger.Error("panic in request handler",
			logger.KeyClientAddr, clientAddr,
			logger.KeyRequestID, requestID,
			"error", r,
			"stack", stack)
	}
}
