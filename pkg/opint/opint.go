// Package opint defines the operational-intent snapshot persisted in the
// KV store (component A) and the key-naming conventions every component
// that touches it shares. The snapshot is the local cache of the DSS's view
// of an operational intent, refreshed on every DSS interaction.
package opint

import (
	"encoding/json"
	"fmt"
	"time"
)

// TTL is how long an OperationalIntentSnapshot (and its reverse index entry)
// survive in the KV store before expiring, refreshed on each DSS interaction.
const TTL = 3 * time.Hour

// Volume is a single 4-D airspace reservation: a 2-D outline, an altitude
// band (WGS84 metres), and a time window.
type Volume struct {
	Outline        []LatLng  `json:"outline"`
	AltitudeLowerM float64   `json:"altitude_lower_m"`
	AltitudeUpperM float64   `json:"altitude_upper_m"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// LatLng is a WGS84 2-D point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Reference mirrors the DSS's OperationalIntentReference: the identity and
// bookkeeping fields the DSS returns on create/update, independent of the
// volumes themselves.
type Reference struct {
	ID              string    `json:"id"`
	Manager         string    `json:"manager"`
	USSAvailability string    `json:"uss_availability"`
	Version         int       `json:"version"`
	State           string    `json:"state"`
	OVN             string    `json:"ovn"`
	StartTime       time.Time `json:"time_start"`
	EndTime         time.Time `json:"time_end"`
	USSBaseURL      string    `json:"uss_base_url"`
	SubscriptionID  string    `json:"subscription_id"`
}

// Snapshot is the KV-resident cache of an operational intent, keyed by
// Key(declarationID). It is the local source of truth for "what did the DSS
// last tell us about this flight's operational intent".
type Snapshot struct {
	DeclarationID     string      `json:"declaration_id"`
	Reference         Reference   `json:"reference"`
	Volumes           []Volume    `json:"volumes"`
	OffNominalVolumes []Volume    `json:"off_nominal_volumes"`
	Priority          int         `json:"priority"`
	Bounds            [4]float64  `json:"bounds"` // minLng, minLat, maxLng, maxLat
	Subscribers       []Subscriber `json:"subscribers"`
}

// Subscriber is a peer USS that must be notified of changes to this intent.
type Subscriber struct {
	USSBaseURL     string `json:"uss_base_url"`
	SubscriptionID string `json:"subscription_id"`
}

// Key returns the KV key an operational intent snapshot is stored under,
// "flight_opint.<declaration_id>".
func Key(declarationID string) string {
	return fmt.Sprintf("flight_opint.%s", declarationID)
}

// ReverseIndexKey returns the KV key for the opint-id → declaration-id cross
// index, "opint_flightref.<opint_id>".
func ReverseIndexKey(opintID string) string {
	return fmt.Sprintf("opint_flightref.%s", opintID)
}

// Marshal serializes a Snapshot for storage.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a Snapshot previously written by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// reverseIndexEntry is the payload stored at ReverseIndexKey.
type reverseIndexEntry struct {
	DeclarationID string `json:"declaration_id"`
}

// MarshalReverseIndex serializes the opint_flightref.<id> → declaration_id
// cross-index entry.
func MarshalReverseIndex(declarationID string) ([]byte, error) {
	return json.Marshal(reverseIndexEntry{DeclarationID: declarationID})
}

// UnmarshalReverseIndex deserializes a cross-index entry, returning the
// declaration id it points to.
func UnmarshalReverseIndex(data []byte) (string, error) {
	var e reverseIndexEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", err
	}
	return e.DeclarationID, nil
}
