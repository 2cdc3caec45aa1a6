package item

import (
	"context"
	"fmt"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/domain"
	"procura/internal/domain/audit"
	"procura/pkg/logger"
)

// Service provides catalog operations for items.
type Service struct {
	repo      Repository
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Item]
}

// NewService creates the item service with audit enrichment hooks registered.
func NewService(repo Repository, txManager tx.Manager) *Service {
	s := &Service{
		repo:      repo,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Item](),
	}
	s.hooks.OnBeforeCreate(audit.EnrichCreatedBy[*Item])
	s.hooks.OnBeforeUpdate(audit.EnrichUpdatedBy[*Item])
	return s
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*Item] {
	return s.hooks
}

// Create adds a catalog item.
func (s *Service) Create(ctx context.Context, it *Item) error {
	it.Normalize()
	if err := it.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, it); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, it); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "item created", "id", it.ID, "name", it.Name, "qty", it.Qty)
	return nil
}

// GetByID returns a single item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		return nil, err
	}
	return it, nil
}

// Update replaces the editable fields of an item.
// apply receives the current row and mutates it in place.
func (s *Service) Update(ctx context.Context, itemID id.ID, apply func(*Item)) (*Item, error) {
	var updated *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.repo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		apply(it)
		it.ID = itemID
		it.Normalize()
		if err := it.Validate(ctx); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeUpdate, it); err != nil {
			return err
		}
		it.Touch()
		if err := s.repo.Update(ctx, it); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an item from the catalog.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, itemID)
	})
}

// List returns a page of items.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
