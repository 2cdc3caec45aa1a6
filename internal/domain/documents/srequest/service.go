package srequest

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

// Ledger is the part of ledger.Adjuster used by service requests.
type Ledger interface {
	LockKeys(ctx context.Context, names []string) error
	ApplyDelta(ctx context.Context, name string, delta int64, defaults ledger.Defaults, src ledger.Source) (*item.Item, error)
}

// Service provides service request operations.
type Service struct {
	repo      Repository
	ledger    Ledger
	txManager tx.Manager
	recorder  audit.Recorder
	hooks     *domain.HookRegistry[*ServiceRequest]
}

// NewService creates a service request service. recorder may be nil.
func NewService(repo Repository, l Ledger, txManager tx.Manager, recorder audit.Recorder) *Service {
	s := &Service{
		repo:      repo,
		ledger:    l,
		txManager: txManager,
		recorder:  recorder,
		hooks:     domain.NewHookRegistry[*ServiceRequest](),
	}
	s.hooks.OnBeforeCreate(audit.EnrichCreatedBy[*ServiceRequest])
	s.hooks.OnBeforeUpdate(audit.EnrichUpdatedBy[*ServiceRequest])
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*ServiceRequest] {
	return s.hooks
}

// Create stores a request. Creation never moves stock, whatever the status.
func (s *Service) Create(ctx context.Context, sr *ServiceRequest) error {
	sr.Normalize()
	if err := sr.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, sr); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sr); err != nil {
			return fmt.Errorf("create service request: %w", err)
		}
		return s.audit(ctx, sr.ID, audit.ActionCreate, nil, sr)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "service request created",
		"id", sr.ID,
		"number", sr.Number,
		"items", len(sr.Items))
	return nil
}

// GetByID retrieves a service request.
func (s *Service) GetByID(ctx context.Context, srID id.ID) (*ServiceRequest, error) {
	sr, err := s.repo.GetByID(ctx, srID)
	if err != nil {
		return nil, s.normalizeGetErr(err, srID)
	}
	return sr, nil
}

// Update persists changes made by apply. When the request enters "approved",
// every line is deducted from stock in the same transaction; the first
// shortage or unknown item aborts the whole update.
func (s *Service) Update(ctx context.Context, srID id.ID, apply func(*ServiceRequest)) (*ServiceRequest, error) {
	var next *ServiceRequest
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prev, err := s.repo.GetForUpdate(ctx, srID)
		if err != nil {
			return s.normalizeGetErr(err, srID)
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
			return fmt.Errorf("update service request: %w", err)
		}
		if EntersApproval(prev.Status, next.Status) {
			if err := s.deduct(ctx, next); err != nil {
				return err
			}
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

// deduct issues every line of sr. Rows are locked in key order first,
// then lines are processed in request order.
func (s *Service) deduct(ctx context.Context, sr *ServiceRequest) error {
	if err := s.ledger.LockKeys(ctx, sr.Items.Names()); err != nil {
		return err
	}
	src := ledger.Source{Type: SourceType, ID: sr.ID, Actor: sr.UpdatedBy}
	for _, li := range sr.Items {
		if _, err := s.ledger.ApplyDelta(ctx, li.Name, -li.Qty, ledger.Defaults{}, src); err != nil {
			return err
		}
	}
	logger.Info(ctx, "service request approved, stock issued",
		"id", sr.ID,
		"lines", len(sr.Items))
	return nil
}

// Delete removes a request. Stock issued on approval is not returned.
func (s *Service) Delete(ctx context.Context, srID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prev, err := s.repo.GetForUpdate(ctx, srID)
		if err != nil {
			return s.normalizeGetErr(err, srID)
		}
		if err := s.repo.Delete(ctx, srID); err != nil {
			return fmt.Errorf("delete service request: %w", err)
		}
		return s.audit(ctx, srID, audit.ActionDelete, prev, nil)
	})
}

// List returns a page of service requests.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ServiceRequest], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service) audit(ctx context.Context, srID id.ID, action audit.Action, before, after *ServiceRequest) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.Record(ctx, SourceType, srID, action, before, after); err != nil {
		return fmt.Errorf("audit service request: %w", err)
	}
	return nil
}

func (s *Service) normalizeGetErr(err error, srID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("service request", srID.String())
	}
	return err
}
