package receiving

import (
	"context"
	"fmt"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/domain"
	"procura/internal/domain/audit"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/ledger"
	"procura/pkg/logger"
)

// Ledger is the part of ledger.Adjuster used by receivings.
type Ledger interface {
	ApplyDelta(ctx context.Context, name string, delta int64, defaults ledger.Defaults, src ledger.Source) (*item.Item, error)
	Revert(ctx context.Context, name string, qty int64, src ledger.Source) (*item.Item, error)
}

// Service provides receiving operations and keeps stock in step with them.
type Service struct {
	repo      Repository
	ledger    Ledger
	txManager tx.Manager
	recorder  audit.Recorder
	hooks     *domain.HookRegistry[*Receiving]
}

// NewService creates a receiving service. recorder may be nil.
func NewService(repo Repository, l Ledger, txManager tx.Manager, recorder audit.Recorder) *Service {
	s := &Service{
		repo:      repo,
		ledger:    l,
		txManager: txManager,
		recorder:  recorder,
		hooks:     domain.NewHookRegistry[*Receiving](),
	}
	s.hooks.OnBeforeCreate(audit.EnrichCreatedBy[*Receiving])
	s.hooks.OnBeforeUpdate(audit.EnrichUpdatedBy[*Receiving])
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Receiving] {
	return s.hooks
}

// Create stores a receiving. An accepted receiving with qty > 0 adds its qty
// to the matching item, creating the item when the name is new.
func (s *Service) Create(ctx context.Context, r *Receiving) error {
	r.Normalize()
	if err := r.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, r); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("create receiving: %w", err)
		}
		if err := s.reconcile(ctx, nil, r); err != nil {
			return err
		}
		return s.audit(ctx, r.ID, audit.ActionCreate, nil, r)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, r); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "receiving created",
		"id", r.ID,
		"number", r.Number,
		"status", r.Status)
	return nil
}

// GetByID retrieves a receiving.
func (s *Service) GetByID(ctx context.Context, recID id.ID) (*Receiving, error) {
	r, err := s.repo.GetByID(ctx, recID)
	if err != nil {
		return nil, s.normalizeGetErr(err, recID)
	}
	return r, nil
}

// Update loads the receiving under a row lock, lets apply modify a copy and
// persists it. Stock is reconciled from the locked prior state, so concurrent
// edits of the same receiving serialize.
func (s *Service) Update(ctx context.Context, recID id.ID, apply func(*Receiving)) (*Receiving, error) {
	var next *Receiving
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prev, err := s.repo.GetForUpdate(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID)
		}

		next = prev.Clone()
		apply(next)
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
		next.CreatedBy = prev.CreatedBy
		next.Normalize()
		if err := next.Validate(ctx); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeUpdate, next); err != nil {
			return err
		}
		next.Touch()

		if err := s.repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update receiving: %w", err)
		}
		if err := s.reconcile(ctx, prev, next); err != nil {
			return err
		}
		return s.audit(ctx, next.ID, audit.ActionUpdate, prev, next)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterUpdate, next); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}
	return next, nil
}

// Delete removes a receiving. Stock it contributed stays in the catalog.
func (s *Service) Delete(ctx context.Context, recID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prev, err := s.repo.GetForUpdate(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID)
		}
		if err := s.repo.Delete(ctx, recID); err != nil {
			return fmt.Errorf("delete receiving: %w", err)
		}
		return s.audit(ctx, recID, audit.ActionDelete, prev, nil)
	})
}

// List returns a page of receivings.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Receiving], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service) reconcile(ctx context.Context, prev, next *Receiving) error {
	src := ledger.Source{Type: SourceType, ID: next.ID, Actor: next.UpdatedBy}
	for _, step := range PlanTransition(prev, next) {
		switch step.Kind {
		case StepRevert:
			if _, err := s.ledger.Revert(ctx, step.Effect.Name, step.Effect.Qty, src); err != nil {
				return err
			}
		case StepApply:
			defaults := ledger.Defaults{UnitType: next.UnitType, Supplier: next.Supplier}
			if _, err := s.ledger.ApplyDelta(ctx, step.Effect.Name, step.Effect.Qty, defaults, src); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) audit(ctx context.Context, recID id.ID, action audit.Action, before, after *Receiving) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.Record(ctx, SourceType, recID, action, before, after); err != nil {
		return fmt.Errorf("audit receiving: %w", err)
	}
	return nil
}

func (s *Service) normalizeGetErr(err error, recID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("receiving", recID.String())
	}
	return err
}
