package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for coordination engine operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Caller attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Orchestration attributes
	// ========================================================================
	AttrOperation     = "coord.operation"     // submit, activate, conformance_check, ...
	AttrDeclarationID = "coord.declaration_id" // Flight declaration UUID
	AttrOpIntID       = "coord.opint_id"       // DSS-assigned operational intent id
	AttrOVN           = "coord.ovn"            // Opaque version number
	AttrOldState      = "coord.old_state"
	AttrNewState      = "coord.new_state"
	AttrEvent         = "coord.event"
	AttrActor         = "coord.actor"

	// ========================================================================
	// Conformance monitoring attributes
	// ========================================================================
	AttrConformanceCode = "conformance.code"
	AttrTelemetryAge    = "conformance.telemetry_age_s"

	// ========================================================================
	// DSS / peer USS attributes
	// ========================================================================
	AttrUSSBaseURL = "dss.uss_base_url"
	AttrSubscriber = "dss.subscriber"
	AttrDSSPath    = "dss.path"

	// ========================================================================
	// KV / stream store attributes
	// ========================================================================
	AttrStoreKey   = "kv.key"
	AttrStreamName = "kv.stream"
	AttrTTLSeconds = "kv.ttl_s"

	// ========================================================================
	// Spatial index / geofence attributes
	// ========================================================================
	AttrGeofenceID = "spatial.geofence_id"
	AttrBoundsArea = "spatial.bounds_area"

	// ========================================================================
	// Scheduler / worker pool attributes
	// ========================================================================
	AttrJobKind    = "scheduler.job_kind"
	AttrJobAttempt = "scheduler.job_attempt"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Orchestrator spans
	// ========================================================================
	SpanOrchestratorHandleEvent = "orchestrator.handle_event"
	SpanOrchestratorTransition  = "orchestrator.transition"

	// ========================================================================
	// DSS client spans
	// ========================================================================
	SpanDSSCreateOperationalIntent = "dss.create_operational_intent"
	SpanDSSUpdateOperationalIntent = "dss.update_operational_intent"
	SpanDSSDeleteOperationalIntent = "dss.delete_operational_intent"
	SpanDSSQueryOperationalIntents = "dss.query_operational_intents"
	SpanDSSNotifyPeerUSS           = "dss.notify_peer_uss"
	SpanDSSFetchToken              = "dss.fetch_token"

	// ========================================================================
	// Deconfliction / spatial index spans
	// ========================================================================
	SpanDeconflictionCheck   = "deconfliction.check"
	SpanSpatialIndexQuery    = "spatial_index.query"
	SpanSpatialIndexRebuild  = "spatial_index.rebuild"

	// ========================================================================
	// Conformance monitoring spans
	// ========================================================================
	SpanConformanceCheck           = "conformance.check"
	SpanConformanceTelemetryUpdate = "conformance.telemetry_update"

	// ========================================================================
	// Scheduler spans
	// ========================================================================
	SpanSchedulerDispatch = "scheduler.dispatch"
	SpanSchedulerRunJob   = "scheduler.run_job"

	// ========================================================================
	// KV / stream store spans (protocol-agnostic storage operations)
	// ========================================================================
	SpanKVGet    = "kv.get"
	SpanKVSet    = "kv.set"
	SpanKVDelete = "kv.delete"
	SpanKVScan   = "kv.scan"
	SpanStreamAdd   = "kv.stream_add"
	SpanStreamRange = "kv.stream_range"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Operation returns an attribute for the orchestrator/worker operation name
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// DeclarationID returns an attribute for a flight declaration UUID
func DeclarationID(id string) attribute.KeyValue {
	return attribute.String(AttrDeclarationID, id)
}

// OpIntID returns an attribute for a DSS-assigned operational intent id
func OpIntID(id string) attribute.KeyValue {
	return attribute.String(AttrOpIntID, id)
}

// OVN returns an attribute for an opaque version number
func OVN(ovn string) attribute.KeyValue {
	return attribute.String(AttrOVN, ovn)
}

// StateTransition returns attributes describing an FSM old/new state pair
func StateTransition(oldState, newState int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrOldState, oldState),
		attribute.Int(AttrNewState, newState),
	}
}

// Event returns an attribute for an FSM event name
func Event(event string) attribute.KeyValue {
	return attribute.String(AttrEvent, event)
}

// Actor returns an attribute for the submitting/originating party
func Actor(actor string) attribute.KeyValue {
	return attribute.String(AttrActor, actor)
}

// ConformanceCode returns an attribute for a conformance check code (C3-C11)
func ConformanceCode(code string) attribute.KeyValue {
	return attribute.String(AttrConformanceCode, code)
}

// TelemetryAge returns an attribute for telemetry staleness in seconds
func TelemetryAge(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrTelemetryAge, seconds)
}

// USSBaseURL returns an attribute for a peer USS base URL
func USSBaseURL(url string) attribute.KeyValue {
	return attribute.String(AttrUSSBaseURL, url)
}

// Subscriber returns an attribute for a subscriber USS identifier
func Subscriber(id string) attribute.KeyValue {
	return attribute.String(AttrSubscriber, id)
}

// DSSPath returns an attribute for a DSS endpoint path
func DSSPath(path string) attribute.KeyValue {
	return attribute.String(AttrDSSPath, path)
}

// StoreKey returns an attribute for a KV store key
func StoreKey(key string) attribute.KeyValue {
	return attribute.String(AttrStoreKey, key)
}

// StreamName returns an attribute for an append-only stream name
func StreamName(name string) attribute.KeyValue {
	return attribute.String(AttrStreamName, name)
}

// TTLSeconds returns an attribute for a KV entry TTL
func TTLSeconds(seconds int64) attribute.KeyValue {
	return attribute.Int64(AttrTTLSeconds, seconds)
}

// GeofenceID returns an attribute for a geofence identifier
func GeofenceID(id string) attribute.KeyValue {
	return attribute.String(AttrGeofenceID, id)
}

// BoundsArea returns an attribute for a bounding box area in square meters
func BoundsArea(area float64) attribute.KeyValue {
	return attribute.Float64(AttrBoundsArea, area)
}

// JobKind returns an attribute for a scheduler job kind
func JobKind(kind string) attribute.KeyValue {
	return attribute.String(AttrJobKind, kind)
}

// JobAttempt returns an attribute for a job retry attempt number
func JobAttempt(n int) attribute.KeyValue {
	return attribute.Int(AttrJobAttempt, n)
}

// StartOrchestratorSpan starts a span for an orchestrator event handling operation.
func StartOrchestratorSpan(ctx context.Context, declarationID, event string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		DeclarationID(declarationID),
		Event(event),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanOrchestratorHandleEvent, trace.WithAttributes(allAttrs...))
}

// StartDSSSpan starts a span for a DSS client call.
func StartDSSSpan(ctx context.Context, spanName, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		DSSPath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartConformanceSpan starts a span for a conformance check.
func StartConformanceSpan(ctx context.Context, declarationID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		DeclarationID(declarationID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanConformanceCheck, trace.WithAttributes(allAttrs...))
}

// StartSchedulerSpan starts a span for a scheduled job run.
func StartSchedulerSpan(ctx context.Context, jobKind string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		JobKind(jobKind),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanSchedulerRunJob, trace.WithAttributes(allAttrs...))
}

// StartKVSpan starts a span for a key-value store operation.
func StartKVSpan(ctx context.Context, operation, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		StoreKey(key),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "kv."+operation, trace.WithAttributes(allAttrs...))
}
