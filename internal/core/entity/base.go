// Package entity holds the fields shared by every persisted record.
package entity

import (
	"context"
	"time"

	"procura/internal/core/id"
)

// DefaultActor is recorded as creator/updater when no authenticated user is present.
const DefaultActor = "system"

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the primary key and timestamps.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// AuditFields records who created and last changed a record.
type AuditFields struct {
	CreatedBy string `db:"created_by" json:"createdBy"`
	UpdatedBy string `db:"updated_by" json:"updatedBy"`
}

// SetCreatedBy implements audit enrichment.
func (a *AuditFields) SetCreatedBy(user string) { a.CreatedBy = user }

// SetUpdatedBy implements audit enrichment.
func (a *AuditFields) SetUpdatedBy(user string) { a.UpdatedBy = user }

// FillDefaults sets "system" for missing actors.
func (a *AuditFields) FillDefaults() {
	if a.CreatedBy == "" {
		a.CreatedBy = DefaultActor
	}
	if a.UpdatedBy == "" {
		a.UpdatedBy = a.CreatedBy
	}
}
