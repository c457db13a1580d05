// Package flightdecl defines the flight declaration entity operators submit
// to Flight Blender: the originating party's claim to operate a UAS within
// a 4D volume, together with its current lifecycle state and the ASTM
// F3548-21 operational intent reference once the DSS has accepted it.
package flightdecl

import (
	"time"

	"github.com/google/uuid"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

// OperationType distinguishes VLOS from BVLOS operations, mirroring the
// two types the original system's permission model recognizes.
type OperationType int

const (
	OperationVLOS  OperationType = 0
	OperationBVLOS OperationType = 1
)

// Declaration is a flight declaration: the operator-submitted claim to fly,
// plus everything Flight Blender tracks about its coordination lifecycle.
type Declaration struct {
	ID                   string                 `gorm:"primaryKey;size:36" json:"id"`
	OperationalIntentRef string                 `gorm:"size:36;index" json:"operational_intent_ref,omitempty"`
	OVN                  string                 `gorm:"size:128" json:"ovn,omitempty"`
	FlightDeclarationGeoJSON string             `gorm:"type:text" json:"flight_declaration_geojson"`
	TypeOfOperation      OperationType          `gorm:"default:0" json:"type_of_operation"`
	Bounds               string                 `gorm:"size:140" json:"bounds"`
	OriginatingParty     string                 `gorm:"size:100;default:'Flight Blender Default'" json:"originating_party"`
	SubmittedBy          string                 `gorm:"size:255" json:"submitted_by,omitempty"`
	ApprovedBy           string                 `gorm:"size:255" json:"approved_by,omitempty"`
	StartDatetime        time.Time              `json:"start_datetime"`
	EndDatetime          time.Time              `json:"end_datetime"`
	State                flightstate.State      `gorm:"default:0" json:"state"`
	IsApproved           bool                   `gorm:"default:false" json:"is_approved"`
	CreatedAt            time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Declaration.
func (Declaration) TableName() string {
	return "flight_declarations"
}

// New builds a Declaration in state NotSubmitted, ready to be handed to the
// orchestrator for DSS submission.
func New(geojson, bounds, originatingParty string, start, end time.Time, opType OperationType) *Declaration {
	return &Declaration{
		ID:                       uuid.New().String(),
		FlightDeclarationGeoJSON: geojson,
		Bounds:                   bounds,
		OriginatingParty:         originatingParty,
		TypeOfOperation:          opType,
		StartDatetime:            start,
		EndDatetime:              end,
		State:                    flightstate.NotSubmitted,
	}
}

// Validate checks the structural invariants every declaration must satisfy
// before it can be submitted to the DSS.
func (d *Declaration) Validate() error {
	if d.FlightDeclarationGeoJSON == "" {
		return blendererrors.NewInvalidArgumentError("flight_declaration_geojson is required")
	}
	if d.Bounds == "" {
		return blendererrors.NewInvalidArgumentError("bounds is required")
	}
	if !d.EndDatetime.After(d.StartDatetime) {
		return blendererrors.NewInvalidArgumentError("end_datetime must be after start_datetime")
	}
	return nil
}

// ApplyEvent runs the declaration's current state through
// flightstate.Transition for event, updating State in place when the event
// has effect. It returns blendererrors.ErrInvalidTransition when the event
// is a no-op from the current state.
func (d *Declaration) ApplyEvent(event flightstate.Event) error {
	next, ok := flightstate.Transition(d.State, event)
	if !ok {
		return blendererrors.NewInvalidTransitionError(d.ID, string(event), int(d.State))
	}
	d.State = next
	return nil
}
