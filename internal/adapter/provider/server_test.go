package provider_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/internal/adapter/provider"
	handlertesting "github.com/marmos91/davmount/internal/adapter/provider/handlers/testing"
	"github.com/marmos91/davmount/pkg/bufpool"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// startProviderServer runs a server over a handler fixture on an ephemeral
// port and wires it as the registry's event listener.
func startProviderServer(t *testing.T) (*provider.Server, *handlertesting.HandlerTestFixture) {
	t.Helper()

	fx := handlertesting.NewHandlerFixture(t)
	d := provider.NewDispatcher(fx.Registry, fx.Handler, nil)
	s := provider.NewServer(provider.Config{Listen: "127.0.0.1:0"}, d, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = s.Stop(nil)
	})

	fx.Registry.SetEvents(s)
	return s, fx
}

// hostConn drives the provider protocol the way a host process would.
type hostConn struct {
	t    *testing.T
	conn net.Conn
}

func dialHost(t *testing.T, addr string) *hostConn {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err, "dialing provider server")
	t.Cleanup(func() { _ = conn.Close() })
	return &hostConn{t: t, conn: conn}
}

func (c *hostConn) send(id uint64, kind provider.Kind, opts any) {
	c.t.Helper()

	raw, err := json.Marshal(opts)
	require.NoError(c.t, err)
	payload, err := json.Marshal(provider.Request{ID: id, Kind: kind, Options: raw})
	require.NoError(c.t, err)
	require.NoError(c.t, provider.WriteFrame(c.conn, payload))
}

// readFrame reads one frame with a deadline, returning the decoded bytes.
func (c *hostConn) readFrame() ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return nil, err
	}
	buf, err := provider.ReadFrame(c.conn, provider.DefaultMaxFrameBytes)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	bufpool.Put(buf)
	return out, nil
}

type wireResponse struct {
	ID     uint64          `json:"id"`
	Status provider.Status `json:"status"`
	Result json.RawMessage `json:"result"`
}

type wireFrame struct {
	Event string `json:"event"`
}

// expectResponse reads the next frame and requires it to be a response.
func (c *hostConn) expectResponse() wireResponse {
	c.t.Helper()

	raw, err := c.readFrame()
	require.NoError(c.t, err, "reading response frame")

	var probe wireFrame
	require.NoError(c.t, json.Unmarshal(raw, &probe))
	require.Empty(c.t, probe.Event, "expected a response, got event %q", probe.Event)

	var resp wireResponse
	require.NoError(c.t, json.Unmarshal(raw, &resp))
	return resp
}

// expectEvent reads the next frame and requires it to be a pushed event.
func (c *hostConn) expectEvent() provider.Event {
	c.t.Helper()

	raw, err := c.readFrame()
	require.NoError(c.t, err, "reading event frame")

	var ev provider.Event
	require.NoError(c.t, json.Unmarshal(raw, &ev))
	require.NotEmpty(c.t, ev.Event, "expected an event, got %s", raw)
	return ev
}

// TestServer_RequestResponse exercises one request over real TCP.
func TestServer_RequestResponse(t *testing.T) {
	s, fx := startProviderServer(t)
	fx.Server.MustWriteFile(t, "/wire.txt", []byte("over the wire"))

	host := dialHost(t, s.Addr())
	host.send(1, provider.KindGetMetadata, provider.GetMetadataOptions{
		MountID: fx.MountID,
		Path:    "/wire.txt",
		Wants:   handlertesting.WantsAll(),
	})

	resp := host.expectResponse()
	assert.EqualValues(t, 1, resp.ID)
	assert.Equal(t, provider.StatusOK, resp.Status)

	var res provider.GetMetadataResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.NotNil(t, res.Metadata.Name)
	assert.Equal(t, "wire.txt", *res.Metadata.Name)
	require.NotNil(t, res.Metadata.Size)
	assert.EqualValues(t, len("over the wire"), *res.Metadata.Size)
}

// TestServer_PipelinedRequests verifies requests sent back to back are all
// answered, correlated by ID rather than arrival order.
func TestServer_PipelinedRequests(t *testing.T) {
	s, fx := startProviderServer(t)
	fx.Server.MustMkdir(t, "/dir")

	host := dialHost(t, s.Addr())

	const n = 16
	for i := 1; i <= n; i++ {
		host.send(uint64(i), provider.KindReadDirectory, provider.ReadDirectoryOptions{
			MountID: fx.MountID,
			Path:    "/dir",
			Wants:   handlertesting.WantsAll(),
		})
	}

	seen := make(map[uint64]bool, n)
	for i := 0; i < n; i++ {
		resp := host.expectResponse()
		assert.Equal(t, provider.StatusOK, resp.Status)
		assert.False(t, seen[resp.ID], "duplicate response for id %d", resp.ID)
		seen[resp.ID] = true
	}
	assert.Len(t, seen, n)
}

// TestServer_UploadOverWire drives a full write lifecycle through the
// framed protocol and checks the assembled document server-side.
func TestServer_UploadOverWire(t *testing.T) {
	s, fx := startProviderServer(t)
	host := dialHost(t, s.Addr())

	host.send(1, provider.KindOpenFile, provider.OpenFileOptions{
		MountID: fx.MountID, RequestID: 77, Path: "/up.bin", Write: true,
	})
	require.Equal(t, provider.StatusOK, host.expectResponse().Status)

	// Second half first; ranges define the assembly order.
	host.send(2, provider.KindWriteFile, provider.WriteFileOptions{
		MountID: fx.MountID, RequestID: 77, Offset: 5, Data: []byte("world"),
	})
	require.Equal(t, provider.StatusOK, host.expectResponse().Status)

	host.send(3, provider.KindWriteFile, provider.WriteFileOptions{
		MountID: fx.MountID, RequestID: 77, Offset: 0, Data: []byte("hello"),
	})
	require.Equal(t, provider.StatusOK, host.expectResponse().Status)

	host.send(4, provider.KindCloseFile, provider.CloseFileOptions{
		MountID: fx.MountID, RequestID: 77,
	})
	require.Equal(t, provider.StatusOK, host.expectResponse().Status)

	assert.Equal(t, []byte("helloworld"), fx.Server.ReadFile(t, "/up.bin"))
}

// TestServer_MountEvents verifies lifecycle events reach connected hosts.
func TestServer_MountEvents(t *testing.T) {
	s, fx := startProviderServer(t)
	host := dialHost(t, s.Addr())

	roID := fx.MountReadOnly("second-mount")

	ev := host.expectEvent()
	assert.Equal(t, provider.EventMountAdded, ev.Event)
	assert.Equal(t, roID, ev.Mount.ID)
	assert.Equal(t, "second-mount", ev.Mount.Name)
	assert.False(t, ev.Mount.Writable)

	require.NoError(t, fx.Registry.Unmount(context.Background(), mounts.MountID(roID)))

	ev = host.expectEvent()
	assert.Equal(t, provider.EventMountRemoved, ev.Event)
	assert.Equal(t, roID, ev.Mount.ID)
	assert.Equal(t, "second-mount", ev.Mount.Name)
	assert.Empty(t, ev.Mount.URL, "removal events carry identity only")
}

// TestServer_UnknownKindOverWire verifies protocol-level failure statuses
// still produce correlated responses.
func TestServer_UnknownKindOverWire(t *testing.T) {
	s, _ := startProviderServer(t)
	host := dialHost(t, s.Addr())

	host.send(5, provider.Kind(12345), struct{}{})
	resp := host.expectResponse()
	assert.EqualValues(t, 5, resp.ID)
	assert.Equal(t, provider.StatusFailed, resp.Status)
}

// TestServer_MalformedFrameDropsConnection verifies a host sending
// unparsable JSON is disconnected rather than answered.
func TestServer_MalformedFrameDropsConnection(t *testing.T) {
	s, _ := startProviderServer(t)
	host := dialHost(t, s.Addr())

	require.NoError(t, provider.WriteFrame(host.conn, []byte("this is not json")))

	_, err := host.readFrame()
	assert.Error(t, err, "connection should be closed")
}

// TestServer_OversizedFrameDropsConnection verifies the frame limit is
// enforced before buffering a body.
func TestServer_OversizedFrameDropsConnection(t *testing.T) {
	s, _ := startProviderServer(t)
	host := dialHost(t, s.Addr())

	// Announce a frame over the 16 MiB default without sending a body.
	prefix := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	_, err := host.conn.Write(prefix)
	require.NoError(t, err)

	_, err = host.readFrame()
	assert.Error(t, err, "connection should be closed")
}

// TestServer_GracefulStop verifies Stop drains idle connections and stops
// accepting new ones.
func TestServer_GracefulStop(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	d := provider.NewDispatcher(fx.Registry, fx.Handler, nil)
	s := provider.NewServer(provider.Config{
		Listen:          "127.0.0.1:0",
		ShutdownTimeout: 2 * time.Second,
	}, d, nil)

	go func() { _ = s.Serve(context.Background()) }()
	addr := s.Addr()

	host := dialHost(t, addr)
	require.NoError(t, s.Stop(nil))

	_, err := host.readFrame()
	assert.Error(t, err, "idle connection should be closed by shutdown")

	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err, "listener should be closed")
}
