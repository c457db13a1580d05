// Package orchestrator binds flight declaration lifecycle events to the
// flightstate transition function and the DSS/peer-USS/conformance side
// effects each transition implies, mirroring
// FlightOperationConformanceHelper.manage_operation_state_transition in the
// reference system.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/audit"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
	"github.com/flightblender/coordination-engine/pkg/metrics"
	"github.com/flightblender/coordination-engine/pkg/notify"
)

// Store is the subset of flightdecl/store.Store the orchestrator needs to
// load and persist a declaration across a transition.
type Store interface {
	Get(ctx context.Context, id string) (*flightdecl.Declaration, error)
	Update(ctx context.Context, d *flightdecl.Declaration) error
}

// AuditingStore is the extended Store a *flightdecl/store.Store satisfies
// once WithAuditStore has been called on it: it persists the declaration
// and an audit.Entry in the same database transaction. Submit prefers this
// over Store.Update whenever the configured store implements it.
type AuditingStore interface {
	Store
	UpdateWithAudit(ctx context.Context, d *flightdecl.Declaration, entry audit.Entry) error
}

// DSSNotifier pushes the DSS/peer-USS side effects a state transition
// implies. A nil DSSNotifier means the DSS network is disabled; every method
// the orchestrator would otherwise call is simply skipped.
type DSSNotifier interface {
	// OperationActivated notifies the DSS that an operational intent moved
	// to the Activated state.
	OperationActivated(ctx context.Context, declarationID string) error
	// OperationEndedClearDSS removes the operational intent reference from
	// the DSS once an operation has ended.
	OperationEndedClearDSS(ctx context.Context, declarationID string) error
	// OperationDeclaredContingent notifies the DSS and subscribed peer USS
	// instances that the operation has declared contingent.
	OperationDeclaredContingent(ctx context.Context, declarationID string) error
	// OperationEnteredNonConforming updates the operational intent to
	// Nonconforming, optionally expanding its volumes.
	OperationEnteredNonConforming(ctx context.Context, declarationID string, expandVolumes bool) error
}

// ConformanceScheduler starts and stops the periodic conformance monitoring
// job that watches an Activated operation for position/time deviation.
type ConformanceScheduler interface {
	StartMonitoring(ctx context.Context, declarationID string) error
	StopMonitoring(ctx context.Context, declarationID string) error
}

// Orchestrator implements handlers.EventSubmitter: it is the single place
// where an operator-submitted OperationEvent becomes a persisted state
// change plus whatever DSS/conformance side effects that change implies.
type Orchestrator struct {
	store              Store
	dss                DSSNotifier
	conformance        ConformanceScheduler
	metrics            *metrics.Metrics
	notifier           notify.Notifier
	dssEnabled         bool
	conformanceEnabled bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDSSNotifications enables DSS/peer-USS notification side effects.
func WithDSSNotifications(enabled bool) Option {
	return func(o *Orchestrator) { o.dssEnabled = enabled }
}

// WithConformanceMonitoring enables creation/removal of the periodic
// conformance monitoring job on Activated entry/exit.
func WithConformanceMonitoring(enabled bool) Option {
	return func(o *Orchestrator) { o.conformanceEnabled = enabled }
}

// WithMetrics attaches a metrics sink. A nil metrics is accepted and is a
// no-op, matching every method on *metrics.Metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithNotifier attaches the operational-update bus, to which commit publishes
// directly after every successful transition. A nil notifier disables that
// best-effort notification.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// New constructs an Orchestrator. dss and conformance may be nil; in that
// case the corresponding side effects are skipped regardless of the
// WithDSSNotifications/WithConformanceMonitoring options.
func New(store Store, dss DSSNotifier, conformance ConformanceScheduler, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: store, dss: dss, conformance: conformance}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit applies event to the declaration identified by declarationID,
// running the DSS/conformance side effects the resulting transition implies
// before persisting the new state. A no-op transition (flightstate.Transition
// returning ok=false) surfaces as a *blendererrors.CoordinationError with
// code ErrInvalidTransition via flightdecl.Declaration.ApplyEvent.
func (o *Orchestrator) Submit(ctx context.Context, declarationID string, event flightstate.Event) (*flightdecl.Declaration, error) {
	d, err := o.store.Get(ctx, declarationID)
	if err != nil {
		return nil, err
	}

	originalState := d.State
	if err := d.ApplyEvent(event); err != nil {
		return nil, err
	}

	return o.commit(ctx, d, originalState, d.State, event)
}

// SubmitConformance applies a conformance-driven state change: unlike
// Submit, newState is supplied directly by the caller (pkg/conformance.EventFor)
// rather than computed by running event through flightstate.Transition.
// Several non-conformance codes are detected from states the FSM has no
// transition out of for the paired event (C4/C5 fire exactly when the
// declaration is NOT Activated; C10 fires from Accepted), so the target
// state must be set directly, mirroring the reference system's
// manage_operation_state_transition(original_state, new_state, event), which
// receives new_state already written and uses event only to pick side
// effects. event is still passed to runSideEffects for that dispatch.
//
// newState equal to the declaration's current state is a no-op: it returns
// the declaration unchanged, with no audit entry, side effects, or
// notification. This keeps repeated detections of the same code idempotent
// once a declaration has already been pushed into the target state (e.g.
// a Contingent operation that keeps failing C4 on every subsequent
// heartbeat), instead of erroring the periodic conformance check forever.
func (o *Orchestrator) SubmitConformance(ctx context.Context, declarationID string, newState flightstate.State, event flightstate.Event) (*flightdecl.Declaration, error) {
	d, err := o.store.Get(ctx, declarationID)
	if err != nil {
		return nil, err
	}

	originalState := d.State
	if originalState == newState {
		return d, nil
	}
	d.State = newState

	return o.commit(ctx, d, originalState, newState, event)
}

// commit runs the side effects a (originalState, newState) transition
// implies, persists d, and publishes the best-effort operational update.
// Shared by Submit and SubmitConformance once each has computed newState.
func (o *Orchestrator) commit(ctx context.Context, d *flightdecl.Declaration, originalState, newState flightstate.State, event flightstate.Event) (*flightdecl.Declaration, error) {
	declarationID := d.ID

	if err := o.runSideEffects(ctx, d, originalState, newState, event); err != nil {
		return nil, err
	}

	if auditing, ok := o.store.(AuditingStore); ok {
		actor := ""
		if lc := logger.FromContext(ctx); lc != nil {
			actor = lc.Actor
		}
		entry := audit.NewEntry(declarationID, actor, event, originalState, newState)
		if err := auditing.UpdateWithAudit(ctx, d, entry); err != nil {
			return nil, err
		}
	} else if err := o.store.Update(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("flight declaration state transition",
		"declaration_id", declarationID,
		"event", string(event),
		"from_state", originalState.String(),
		"to_state", newState.String(),
	)

	if o.notifier != nil {
		msg := notify.Message{
			DeclarationID: declarationID,
			Body:          fmt.Sprintf("%s -> %s (%s)", originalState.String(), newState.String(), string(event)),
			Level:         notify.LevelInfo,
			Timestamp:     time.Now(),
		}
		if newState == flightstate.Nonconforming || newState == flightstate.Contingent {
			msg.Level = notify.LevelWarning
		}
		if err := o.notifier.Publish(ctx, msg); err != nil {
			logger.Warn("publishing operational update failed", "declaration_id", declarationID, "error", err.Error())
		}
	}

	return d, nil
}

// runSideEffects mirrors manage_operation_state_transition: it dispatches on
// the state being entered, then on the specific (originalState, event) pair,
// the same structure the reference implementation uses.
func (o *Orchestrator) runSideEffects(ctx context.Context, d *flightdecl.Declaration, originalState, newState flightstate.State, event flightstate.Event) error {
	switch newState {
	case flightstate.Ended:
		if event == flightstate.EventOperatorConfirmsEnded {
			if o.dssEnabled && o.dss != nil {
				if err := o.dss.OperationEndedClearDSS(ctx, d.ID); err != nil {
					return fmt.Errorf("clearing DSS on operation end: %w", err)
				}
			}
			if o.conformanceEnabled && o.conformance != nil {
				if err := o.conformance.StopMonitoring(ctx, d.ID); err != nil {
					return fmt.Errorf("stopping conformance monitoring: %w", err)
				}
			}
		}

	case flightstate.Contingent:
		enteringFromActivated := originalState == flightstate.Activated &&
			(event == flightstate.EventOperatorInitiatesContingent || event == flightstate.EventBlenderConfirmsContingent)
		enteringFromNonconforming := originalState == flightstate.Nonconforming &&
			(event == flightstate.EventTimeout || event == flightstate.EventOperatorConfirmsContingent || event == flightstate.EventBlenderConfirmsContingent)
		if (enteringFromActivated || enteringFromNonconforming) && o.dssEnabled && o.dss != nil {
			if err := o.dss.OperationDeclaredContingent(ctx, d.ID); err != nil {
				return fmt.Errorf("declaring contingency to DSS: %w", err)
			}
		}

	case flightstate.Nonconforming:
		if o.metrics != nil {
			o.metrics.RecordNonconforming()
		}
		fromAcceptedOrActivated := originalState == flightstate.Accepted || originalState == flightstate.Activated
		if fromAcceptedOrActivated && o.dssEnabled && o.dss != nil {
			expandVolumes := event == flightstate.EventUAExitsCoordinatedOpIntent
			if err := o.dss.OperationEnteredNonConforming(ctx, d.ID, expandVolumes); err != nil {
				return fmt.Errorf("updating DSS to nonconforming: %w", err)
			}
		}

	case flightstate.Activated:
		if originalState == flightstate.Accepted && event == flightstate.EventOperatorActivates {
			if o.dssEnabled && o.dss != nil {
				if err := o.dss.OperationActivated(ctx, d.ID); err != nil {
					return fmt.Errorf("activating operation on DSS: %w", err)
				}
			}
			if o.conformanceEnabled && o.conformance != nil {
				if err := o.conformance.StartMonitoring(ctx, d.ID); err != nil {
					return fmt.Errorf("starting conformance monitoring: %w", err)
				}
			}
		}
	}

	return nil
}
