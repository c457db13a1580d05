package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Orchestration
	// ========================================================================
	KeyOperation = "operation" // Orchestrator/worker operation name (submit, activate, conformance_check, ...)
	KeyEvent     = "event"     // FSM event name
	KeyActor     = "actor"     // Submitted-by / originating party identity

	// ========================================================================
	// Flight Declaration & Operational Intent
	// ========================================================================
	KeyDeclarationID = "declaration_id" // Flight declaration UUID
	KeyOpIntID       = "opint_id"       // DSS-assigned operational intent id
	KeyOVN           = "ovn"            // Opaque version number returned by the DSS
	KeyOldState      = "old_state"      // FlightOperationState before a transition
	KeyNewState      = "new_state"      // FlightOperationState after a transition
	KeyPriority      = "priority"       // Operational intent priority
	KeyAircraftID    = "aircraft_id"    // Registered aircraft / UAS identifier

	// ========================================================================
	// Conformance Monitoring
	// ========================================================================
	KeyConformanceCode = "conformance_code" // C3-C11 conformance check code
	KeyTelemetryAge    = "telemetry_age_s"  // Seconds since last received telemetry

	// ========================================================================
	// DSS / Peer USS Interaction
	// ========================================================================
	KeyUSSBaseURL = "uss_base_url" // Peer USS base URL being notified
	KeySubscriber = "subscriber"   // Subscriber USS identifier from a DSS response
	KeyDSSPath    = "dss_path"     // DSS endpoint path invoked

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP   = "client_ip"   // Operator API caller IP address
	KeyClientHost = "client_host" // Operator API caller hostname, if resolved

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeyRequestID = "request_id" // HTTP request ID

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric/categorical error code
	KeySource     = "source"      // Originating subsystem: scheduler, api, orchestrator, conformance

	// ========================================================================
	// KV / Stream Store
	// ========================================================================
	KeyStoreKey   = "store_key"   // KV store key
	KeyStreamName = "stream_name" // Append-only stream name
	KeyTTLSeconds = "ttl_s"       // Time-to-live applied to a KV entry

	// ========================================================================
	// Spatial Index / Geofence
	// ========================================================================
	KeyGeofenceID = "geofence_id" // Geofence identifier
	KeyBoundsArea = "bounds_area" // Bounding box area (square meters) touched by a spatial query

	// ========================================================================
	// Scheduler / Worker Pool
	// ========================================================================
	KeyJobKind     = "job_kind"     // submit_declaration_to_dss, check_flight_conformance, send_operational_update_message
	KeyJobAttempt  = "job_attempt"  // Retry attempt number for a scheduled job
	KeyMaxAttempts = "max_attempts" // Maximum retry attempts configured for a job kind
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for the orchestrator/worker operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Event returns a slog.Attr for an FSM event name
func Event(event string) slog.Attr {
	return slog.String(KeyEvent, event)
}

// Actor returns a slog.Attr for the submitting/originating party
func Actor(actor string) slog.Attr {
	return slog.String(KeyActor, actor)
}

// DeclarationID returns a slog.Attr for a flight declaration UUID
func DeclarationID(id string) slog.Attr {
	return slog.String(KeyDeclarationID, id)
}

// OpIntID returns a slog.Attr for a DSS-assigned operational intent id
func OpIntID(id string) slog.Attr {
	return slog.String(KeyOpIntID, id)
}

// OVN returns a slog.Attr for an opaque version number
func OVN(ovn string) slog.Attr {
	return slog.String(KeyOVN, ovn)
}

// StateTransition returns slog.Attrs describing an FSM old/new state pair
func StateTransition(oldState, newState int) []slog.Attr {
	return []slog.Attr{
		slog.Int(KeyOldState, oldState),
		slog.Int(KeyNewState, newState),
	}
}

// Priority returns a slog.Attr for an operational intent priority
func Priority(p int) slog.Attr {
	return slog.Int(KeyPriority, p)
}

// AircraftID returns a slog.Attr for a registered aircraft/UAS identifier
func AircraftID(id string) slog.Attr {
	return slog.String(KeyAircraftID, id)
}

// ConformanceCode returns a slog.Attr for a conformance check code (C3-C11)
func ConformanceCode(code string) slog.Attr {
	return slog.String(KeyConformanceCode, code)
}

// TelemetryAge returns a slog.Attr for telemetry staleness in seconds
func TelemetryAge(seconds float64) slog.Attr {
	return slog.Float64(KeyTelemetryAge, seconds)
}

// USSBaseURL returns a slog.Attr for a peer USS base URL
func USSBaseURL(url string) slog.Attr {
	return slog.String(KeyUSSBaseURL, url)
}

// Subscriber returns a slog.Attr for a subscriber USS identifier
func Subscriber(id string) slog.Attr {
	return slog.String(KeySubscriber, id)
}

// DSSPath returns a slog.Attr for a DSS endpoint path
func DSSPath(path string) slog.Attr {
	return slog.String(KeyDSSPath, path)
}

// ClientIP returns a slog.Attr for the caller's IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ClientHost returns a slog.Attr for the caller's resolved hostname
func ClientHost(host string) slog.Attr {
	return slog.String(KeyClientHost, host)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric/categorical error code
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Source returns a slog.Attr for the originating subsystem
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// StoreKey returns a slog.Attr for a KV store key
func StoreKey(key string) slog.Attr {
	return slog.String(KeyStoreKey, key)
}

// StreamName returns a slog.Attr for an append-only stream name
func StreamName(name string) slog.Attr {
	return slog.String(KeyStreamName, name)
}

// TTLSeconds returns a slog.Attr for a KV entry TTL
func TTLSeconds(seconds int64) slog.Attr {
	return slog.Int64(KeyTTLSeconds, seconds)
}

// GeofenceID returns a slog.Attr for a geofence identifier
func GeofenceID(id string) slog.Attr {
	return slog.String(KeyGeofenceID, id)
}

// BoundsArea returns a slog.Attr for a bounding box area in square meters
func BoundsArea(area float64) slog.Attr {
	return slog.Float64(KeyBoundsArea, area)
}

// JobKind returns a slog.Attr for a scheduler job kind
func JobKind(kind string) slog.Attr {
	return slog.String(KeyJobKind, kind)
}

// JobAttempt returns a slog.Attr for a job retry attempt number
func JobAttempt(n int) slog.Attr {
	return slog.Int(KeyJobAttempt, n)
}

// MaxAttempts returns a slog.Attr for the maximum configured retry attempts
func MaxAttempts(n int) slog.Attr {
	return slog.Int(KeyMaxAttempts, n)
}
