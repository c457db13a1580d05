// Package audit implements the append-only non-repudiation trail
// (SPEC_FULL §10.4): one row per state transition, persisted through the
// same relational store flightdecl/store uses. Grounded on
// original_source/non_repudiation/ (which logs DSS interactions for later
// dispute resolution) and Testable Property 1 (spec.md §8).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

// Entry is one audit record: who did what to which declaration, and what
// state it moved from/to. Entries are never updated or deleted once
// written.
type Entry struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	DeclarationID string    `gorm:"size:36;index" json:"declaration_id"`
	Actor         string    `gorm:"size:255" json:"actor,omitempty"`
	Event         string    `gorm:"size:64" json:"event"`
	BeforeState   int       `json:"before_state"`
	AfterState    int       `json:"after_state"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Entry.
func (Entry) TableName() string {
	return "audit_entries"
}

// NewEntry builds an Entry for a single transition, ready to be persisted
// by Record or RecordTx.
func NewEntry(declarationID, actor string, event flightstate.Event, before, after flightstate.State) Entry {
	return Entry{
		ID:            uuid.New().String(),
		DeclarationID: declarationID,
		Actor:         actor,
		Event:         string(event),
		BeforeState:   int(before),
		AfterState:    int(after),
	}
}

// Store persists audit entries.
type Store struct {
	db *gorm.DB
}

// New wraps an already-opened *gorm.DB, typically the same connection
// flightdecl/store.Store uses.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates/updates the audit_entries table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Entry{})
}

// Record persists entry on its own.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

// RecordTx persists entry as part of an already-open transaction tx,
// letting a caller write the audit row in the same transaction as the
// state change it records.
func (s *Store) RecordTx(tx *gorm.DB, entry Entry) error {
	return tx.Create(&entry).Error
}

// ListForDeclaration returns every audit entry for declarationID, oldest
// first.
func (s *Store) ListForDeclaration(ctx context.Context, declarationID string) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("declaration_id = ?", declarationID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
