// Package audit fills audit fields and records change history.
package audit

import (
	"context"

	appctx "procura/internal/core/context"
	"procura/internal/core/entity"
	"procura/internal/core/id"
)

type creatorSetter interface {
	SetCreatedBy(string)
	SetUpdatedBy(string)
}

type updaterSetter interface {
	SetUpdatedBy(string)
}

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the authenticated user.
// Without a user in context the fields default to "system" unless already set.
// Register as a BeforeCreate hook.
func EnrichCreatedBy[T creatorSetter](ctx context.Context, e T) error {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		if f, ok := any(e).(interface{ FillDefaults() }); ok {
			f.FillDefaults()
		}
		return nil
	}
	e.SetCreatedBy(userID)
	e.SetUpdatedBy(userID)
	return nil
}

// EnrichUpdatedBy sets UpdatedBy from the authenticated user, or "system".
// Register as a BeforeUpdate hook.
func EnrichUpdatedBy[T updaterSetter](ctx context.Context, e T) error {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		userID = entity.DefaultActor
	}
	e.SetUpdatedBy(userID)
	return nil
}

// Action is the kind of audited change.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Recorder persists an audit entry within the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, before, after any) error
}

// Actor returns the user performing the current request, or "system".
func Actor(ctx context.Context) string {
	if userID := appctx.GetUserID(ctx); userID != "" {
		return userID
	}
	return entity.DefaultActor
}
