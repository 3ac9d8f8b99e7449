package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/internal/telemetry"
	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// ============================================================================
// Handler Contract
// ============================================================================

// Handlers is the procedure surface the dispatcher routes to. The concrete
// implementation lives in the handlers subpackage; the interface keeps the
// dependency one-way (handlers import this package for the wire records,
// never the reverse).
type Handlers interface {
	GetMetadata(ctx context.Context, opts *GetMetadataOptions) (*GetMetadataResult, error)
	ReadDirectory(ctx context.Context, opts *ReadDirectoryOptions) (*ReadDirectoryResult, error)
	OpenFile(ctx context.Context, opts *OpenFileOptions) error
	CloseFile(ctx context.Context, opts *CloseFileOptions) error
	ReadFile(ctx context.Context, opts *ReadFileOptions) (*ReadFileResult, error)
	WriteFile(ctx context.Context, opts *WriteFileOptions) (*WriteFileResult, error)
	Truncate(ctx context.Context, opts *TruncateOptions) error
	CreateFile(ctx context.Context, opts *CreateFileOptions) error
	CreateDirectory(ctx context.Context, opts *CreateDirectoryOptions) error
	DeleteEntry(ctx context.Context, opts *DeleteEntryOptions) error
	CopyEntry(ctx context.Context, opts *CopyEntryOptions) error
	MoveEntry(ctx context.Context, opts *MoveEntryOptions) error
	Abort(ctx context.Context, opts *AbortOptions) error
	Unmount(ctx context.Context, opts *UnmountOptions) error
}

// ============================================================================
// Dispatch Table
// ============================================================================

// procedureHandler decodes a kind's option record and invokes the matching
// Handlers method. The returned result is attached to the response only
// when err is nil.
type procedureHandler func(ctx context.Context, h Handlers, options json.RawMessage) (any, error)

// procedure holds dispatch metadata for one request kind.
type procedure struct {
	// Name is the procedure name for logs and metrics (e.g. "GETMETADATA").
	Name string

	// Handler decodes options and runs the procedure.
	Handler procedureHandler

	// Mutating marks procedures rejected on read-only mounts before any
	// remote call. OpenFile is not in this set: only its write mode
	// mutates, which the handler itself enforces.
	Mutating bool
}

// dispatchTable maps every request kind to its procedure. Built once at
// package init; no reflection anywhere on the dispatch path.
var dispatchTable map[Kind]*procedure

func init() {
	dispatchTable = map[Kind]*procedure{
		KindGetMetadata:     {Name: "GETMETADATA", Handler: dispatchGetMetadata},
		KindReadDirectory:   {Name: "READDIRECTORY", Handler: dispatchReadDirectory},
		KindOpenFile:        {Name: "OPENFILE", Handler: dispatchOpenFile},
		KindCloseFile:       {Name: "CLOSEFILE", Handler: dispatchCloseFile},
		KindReadFile:        {Name: "READFILE", Handler: dispatchReadFile},
		KindWriteFile:       {Name: "WRITEFILE", Handler: dispatchWriteFile, Mutating: true},
		KindTruncate:        {Name: "TRUNCATE", Handler: dispatchTruncate, Mutating: true},
		KindCreateFile:      {Name: "CREATEFILE", Handler: dispatchCreateFile, Mutating: true},
		KindCreateDirectory: {Name: "CREATEDIRECTORY", Handler: dispatchCreateDirectory, Mutating: true},
		KindDeleteEntry:     {Name: "DELETEENTRY", Handler: dispatchDeleteEntry, Mutating: true},
		KindCopyEntry:       {Name: "COPYENTRY", Handler: dispatchCopyEntry, Mutating: true},
		KindMoveEntry:       {Name: "MOVEENTRY", Handler: dispatchMoveEntry, Mutating: true},
		KindAbort:           {Name: "ABORT", Handler: dispatchAbort},
		KindUnmount:         {Name: "UNMOUNT", Handler: dispatchUnmount},
	}
}

// ============================================================================
// Dispatcher
// ============================================================================

// Dispatcher routes host requests to procedures and normalizes every
// outcome into a Response.
//
// Thread Safety:
// Dispatch is reentrant. Requests run concurrently, including requests
// against the same mount or path; no per-request state is shared.
type Dispatcher struct {
	registry *registry.Registry
	handlers Handlers
	metrics  metrics.ProviderMetrics
}

// NewDispatcher builds a dispatcher over the registry and handler set.
// Metrics may be nil.
func NewDispatcher(reg *registry.Registry, h Handlers, m metrics.ProviderMetrics) *Dispatcher {
	return &Dispatcher{registry: reg, handlers: h, metrics: m}
}

// mountProbe extracts the mount ID shared by every option record, so the
// dispatcher can resolve the mount before the kind-specific decode.
type mountProbe struct {
	MountID string `json:"mount_id"`
}

// Dispatch runs one request to completion and always produces a response:
// transport-level problems are the connection's concern, everything else
// is expressed through the status vocabulary.
//
// The sequence is fixed: resolve the procedure, resolve the mount, reject
// mutations on read-only mounts, invoke the handler, normalize the
// outcome. Mutating handlers await remote completion before touching the
// cache, so a response never races its own side effects.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	proc, ok := dispatchTable[req.Kind]
	if !ok {
		logger.WarnCtx(ctx, "unknown request kind",
			logger.KeyRequestID, req.ID, logger.KeyProcedure, uint32(req.Kind))
		return &Response{ID: req.ID, Status: StatusFailed}
	}

	start := time.Now()
	if d.metrics != nil {
		d.metrics.RecordRequestStart(proc.Name)
		defer d.metrics.RecordRequestEnd(proc.Name)
	}

	var probe mountProbe
	if err := json.Unmarshal(req.Options, &probe); err != nil {
		return d.finish(ctx, req, proc, "", start, nil,
			fmt.Errorf("decode %s options: %w", proc.Name, err))
	}

	if lc := logger.FromContext(ctx); lc != nil {
		ctx = logger.WithContext(ctx,
			lc.WithProcedure(proc.Name).WithMount(probe.MountID).WithRequestID(req.ID))
	}

	ctx, span := telemetry.StartProviderSpan(ctx, proc.Name, probe.MountID,
		telemetry.RequestID(req.ID))
	defer span.End()

	// Carry the span IDs into log lines for trace correlation
	ctx = telemetry.InjectTraceContext(ctx)

	m, ok := d.registry.GetMount(mounts.MountID(probe.MountID))
	if !ok {
		return d.finish(ctx, req, proc, probe.MountID, start, nil,
			NewUnknownMountError(probe.MountID))
	}

	if proc.Mutating && !m.Writable {
		return d.finish(ctx, req, proc, probe.MountID, start, nil, ErrReadOnlyMount)
	}

	result, err := proc.Handler(ctx, d.handlers, req.Options)
	return d.finish(ctx, req, proc, probe.MountID, start, result, err)
}

// finish normalizes a procedure outcome into the response frame and emits
// the per-request log line and metrics.
func (d *Dispatcher) finish(ctx context.Context, req *Request, proc *procedure, mountID string, start time.Time, result any, err error) *Response {
	status := StatusOf(err)

	resp := &Response{ID: req.ID, Status: status}
	if err == nil {
		resp.Result = result
	}

	duration := time.Since(start)
	if d.metrics != nil {
		d.metrics.RecordRequest(proc.Name, mountID, duration, string(status))
	}

	telemetry.SetAttributes(ctx, telemetry.Status(string(status)))
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "request failed",
			logger.KeyStatus, string(status), logger.Err(err))
	} else {
		logger.DebugCtx(ctx, "request complete", logger.KeyStatus, string(status))
	}
	return resp
}

// ============================================================================
// Procedure Wrappers
// ============================================================================
//
// Each wrapper decodes its kind's option record and calls the matching
// handler method. Decode failures normalize to StatusFailed. Results are
// returned untyped; the dispatcher attaches them only on success.

func dispatchGetMetadata(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &GetMetadataOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode GETMETADATA options: %w", err)
	}
	result, err := h.GetMetadata(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func dispatchReadDirectory(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &ReadDirectoryOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode READDIRECTORY options: %w", err)
	}
	result, err := h.ReadDirectory(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func dispatchOpenFile(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &OpenFileOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode OPENFILE options: %w", err)
	}
	return nil, h.OpenFile(ctx, opts)
}

func dispatchCloseFile(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &CloseFileOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode CLOSEFILE options: %w", err)
	}
	return nil, h.CloseFile(ctx, opts)
}

func dispatchReadFile(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &ReadFileOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode READFILE options: %w", err)
	}
	result, err := h.ReadFile(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func dispatchWriteFile(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &WriteFileOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode WRITEFILE options: %w", err)
	}
	result, err := h.WriteFile(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func dispatchTruncate(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &TruncateOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode TRUNCATE options: %w", err)
	}
	return nil, h.Truncate(ctx, opts)
}

func dispatchCreateFile(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &CreateFileOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode CREATEFILE options: %w", err)
	}
	return nil, h.CreateFile(ctx, opts)
}

func dispatchCreateDirectory(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &CreateDirectoryOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode CREATEDIRECTORY options: %w", err)
	}
	return nil, h.CreateDirectory(ctx, opts)
}

func dispatchDeleteEntry(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &DeleteEntryOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode DELETEENTRY options: %w", err)
	}
	return nil, h.DeleteEntry(ctx, opts)
}

func dispatchCopyEntry(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &CopyEntryOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode COPYENTRY options: %w", err)
	}
	return nil, h.CopyEntry(ctx, opts)
}

func dispatchMoveEntry(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &MoveEntryOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode MOVEENTRY options: %w", err)
	}
	return nil, h.MoveEntry(ctx, opts)
}

func dispatchAbort(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &AbortOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode ABORT options: %w", err)
	}
	return nil, h.Abort(ctx, opts)
}

func dispatchUnmount(ctx context.Context, h Handlers, raw json.RawMessage) (any, error) {
	opts := &UnmountOptions{}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("decode UNMOUNT options: %w", err)
	}
	return nil, h.Unmount(ctx, opts)
}
