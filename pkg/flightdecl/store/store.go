// Package store persists flight declarations in a relational database via
// GORM: Postgres in production, SQLite for local development and tests.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flightblender/coordination-engine/pkg/audit"
	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
)

// Store is a GORM-backed flightdecl.Declaration repository.
type Store struct {
	db    *gorm.DB
	audit *audit.Store
}

// New wraps an already-opened *gorm.DB. Callers choose the dialect
// (postgres.Open/sqlite.Open); AutoMigrate creates the table afterwards.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithAuditStore attaches an audit.Store sharing the same underlying
// connection, enabling UpdateWithAudit. Passing nil disables it again.
func (s *Store) WithAuditStore(a *audit.Store) *Store {
	s.audit = a
	return s
}

// AutoMigrate creates/updates the flight_declarations table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&flightdecl.Declaration{})
}

func (s *Store) Create(ctx context.Context, d *flightdecl.Declaration) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		if isUniqueConstraintError(err) {
			return blendererrors.NewConflictError(d.ID, "")
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*flightdecl.Declaration, error) {
	var d flightdecl.Declaration
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, blendererrors.NewNotFoundError(id, "flight declaration")
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) List(ctx context.Context) ([]*flightdecl.Declaration, error) {
	var decls []*flightdecl.Declaration
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&decls).Error; err != nil {
		return nil, err
	}
	return decls, nil
}

// Update persists the full row for d, including its current lifecycle state.
func (s *Store) Update(ctx context.Context, d *flightdecl.Declaration) error {
	d.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Save(d)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return blendererrors.NewNotFoundError(d.ID, "flight declaration")
	}
	return nil
}

// UpdateWithAudit persists d and writes an audit entry in the same
// database transaction, the Go-level expression of Testable Property 1
// (spec.md §8): every state transition has exactly one corresponding audit
// row, written atomically with it. If no audit.Store was attached via
// WithAuditStore, it behaves exactly like Update.
func (s *Store) UpdateWithAudit(ctx context.Context, d *flightdecl.Declaration, entry audit.Entry) error {
	if s.audit == nil {
		return s.Update(ctx, d)
	}
	d.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Save(d)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return blendererrors.NewNotFoundError(d.ID, "flight declaration")
		}
		return s.audit.RecordTx(tx, entry)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&flightdecl.Declaration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return blendererrors.NewNotFoundError(id, "flight declaration")
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	// SQLite and Postgres both surface unique-constraint violations as
	// driver-specific error strings rather than a shared sentinel; GORM
	// does not normalize them, so a substring check is the portable option.
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
