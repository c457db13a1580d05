package dssclient

import (
	"context"
	"fmt"

	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

// Notifier adapts Client's wire-level operational-intent CRUD to the four
// named lifecycle operations pkg/orchestrator drives a transition through
// (its DSSNotifier interface), using the cached opint.Snapshot as the
// source of the current OVN and declared volumes. Grounded on
// original_source/operation_intent/helper.py's
// update_operational_intent_reference, which is called from every one of
// these lifecycle points with only the new state (and sometimes expanded
// volumes) differing.
type Notifier struct {
	client  *Client
	opints  *opint.Store
	dssHost string
}

// NewNotifier builds a Notifier over client and the shared opint cache.
// dssHost is the audience passed to GetCachedCredentials for DSS calls (as
// opposed to a peer USS's own base URL for notification calls).
func NewNotifier(client *Client, opints *opint.Store, dssHost string) *Notifier {
	return &Notifier{client: client, opints: opints, dssHost: dssHost}
}

func (n *Notifier) transition(ctx context.Context, declarationID, state string, expandVolumes bool) error {
	snap, err := n.opints.Get(ctx, declarationID)
	if err != nil {
		return fmt.Errorf("loading operational intent snapshot for %s: %w", declarationID, err)
	}

	volumes := snap.Volumes
	offNominal := snap.OffNominalVolumes
	if expandVolumes && len(offNominal) == 0 {
		// No off-nominal volume was declared up front; the contingency
		// widening the DSS expects falls back to re-asserting the nominal
		// volumes as off-nominal, which still moves other USS traffic
		// managers to give the operation a wider berth.
		offNominal = volumes
	}

	result, err := n.client.UpdateOperationalIntent(ctx, n.dssHost, snap.Reference.ID, volumes, offNominal, snap.Reference.OVN, state)
	if err != nil {
		return err
	}

	snap.Reference = result.Reference
	snap.Subscribers = result.Subscribers
	if err := n.opints.Put(ctx, snap); err != nil {
		return fmt.Errorf("caching updated operational intent snapshot: %w", err)
	}

	n.notifySubscribers(ctx, snap, volumes, offNominal)
	return nil
}

func (n *Notifier) notifySubscribers(ctx context.Context, snap *opint.Snapshot, volumes, offNominal []opint.Volume) {
	payload := NotificationPayload{Reference: snap.Reference}
	payload.Details.Volumes = volumes
	payload.Details.Priority = snap.Priority
	payload.Details.OffNominalVolumes = offNominal

	for _, sub := range snap.Subscribers {
		if err := n.client.NotifyPeerUSS(ctx, sub, payload); err != nil {
			logger.Warn("peer USS notification failed",
				"declaration_id", snap.DeclarationID,
				"subscriber", sub.USSBaseURL,
				"error", err.Error(),
			)
		}
	}
}

// OperationActivated notifies the DSS that the operational intent is now
// Activated.
func (n *Notifier) OperationActivated(ctx context.Context, declarationID string) error {
	return n.transition(ctx, declarationID, "Activated", false)
}

// OperationEndedClearDSS marks the operational intent Ended with the DSS
// and drops it from the local cache; the DSS itself garbage-collects Ended
// references after their declared end time.
func (n *Notifier) OperationEndedClearDSS(ctx context.Context, declarationID string) error {
	if err := n.transition(ctx, declarationID, "Ended", false); err != nil {
		return err
	}
	return n.opints.Delete(ctx, declarationID)
}

// OperationDeclaredContingent notifies the DSS and subscribed peer USS
// instances that the operation has declared contingent.
func (n *Notifier) OperationDeclaredContingent(ctx context.Context, declarationID string) error {
	return n.transition(ctx, declarationID, "Contingent", false)
}

// OperationEnteredNonConforming updates the operational intent to
// Nonconforming, optionally expanding its volumes to the off-nominal set.
func (n *Notifier) OperationEnteredNonConforming(ctx context.Context, declarationID string, expandVolumes bool) error {
	return n.transition(ctx, declarationID, "Nonconforming", expandVolumes)
}
