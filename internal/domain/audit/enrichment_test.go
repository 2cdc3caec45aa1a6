package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "procura/internal/core/context"
	"procura/internal/core/entity"
)

type record struct {
	entity.AuditFields
}

func TestEnrichCreatedBy_FromUser(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "alice"})
	r := &record{}

	assert.NoError(t, EnrichCreatedBy(ctx, r))
	assert.Equal(t, "alice", r.CreatedBy)
	assert.Equal(t, "alice", r.UpdatedBy)
}

func TestEnrichCreatedBy_DefaultsToSystem(t *testing.T) {
	r := &record{}

	assert.NoError(t, EnrichCreatedBy(context.Background(), r))
	assert.Equal(t, entity.DefaultActor, r.CreatedBy)
	assert.Equal(t, entity.DefaultActor, r.UpdatedBy)
}

func TestEnrichCreatedBy_KeepsExplicitCreator(t *testing.T) {
	r := &record{AuditFields: entity.AuditFields{CreatedBy: "importer"}}

	assert.NoError(t, EnrichCreatedBy(context.Background(), r))
	assert.Equal(t, "importer", r.CreatedBy)
	assert.Equal(t, "importer", r.UpdatedBy)
}

func TestEnrichUpdatedBy(t *testing.T) {
	r := &record{AuditFields: entity.AuditFields{CreatedBy: "alice", UpdatedBy: "alice"}}
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "bob"})

	assert.NoError(t, EnrichUpdatedBy(ctx, r))
	assert.Equal(t, "alice", r.CreatedBy)
	assert.Equal(t, "bob", r.UpdatedBy)

	assert.NoError(t, EnrichUpdatedBy(context.Background(), r))
	assert.Equal(t, entity.DefaultActor, r.UpdatedBy)
}
