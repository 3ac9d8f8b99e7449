package telemetry

// Config holds OpenTelemetry tracing configuration.
type Config struct {
	// Enabled turns span export on. When false every Start*Span helper
	// returns a no-op span.
	Enabled bool

	// ServiceName is reported to the trace backend.
	ServiceName string

	// ServiceVersion is attached as a resource attribute.
	ServiceVersion string

	// Endpoint is the OTLP gRPC endpoint, e.g. "localhost:4317".
	Endpoint string

	// Insecure disables TLS on the exporter connection.
	Insecure bool

	// SampleRate is the head sampling ratio: 1.0 samples everything,
	// 0.5 half of all traces.
	SampleRate float64
}

// DefaultConfig returns the daemon defaults: tracing off, local OTLP
// collector, sample everything.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "davmount",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
