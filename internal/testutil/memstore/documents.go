package memstore

import (
	"context"
	"sort"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
)

// ReceivingRepo implements receiving.Repository.
type ReceivingRepo struct{ s *Store }

var _ receiving.Repository = (*ReceivingRepo)(nil)

// Receivings returns the receiving repository view.
func (s *Store) Receivings() *ReceivingRepo { return &ReceivingRepo{s: s} }

func (r *ReceivingRepo) Create(ctx context.Context, rec *receiving.Receiving) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.receivings[rec.ID] = rec.Clone()
	return nil
}

func (r *ReceivingRepo) Update(ctx context.Context, rec *receiving.Receiving) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("receiving.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.receivings[rec.ID]; !ok {
		return apperror.NewNotFound("receivings", rec.ID.String())
	}
	r.s.st.receivings[rec.ID] = rec.Clone()
	return nil
}

func (r *ReceivingRepo) GetByID(ctx context.Context, recID id.ID) (*receiving.Receiving, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.st.receivings[recID]
	if !ok {
		return nil, apperror.NewNotFound("receivings", recID.String())
	}
	return rec.Clone(), nil
}

func (r *ReceivingRepo) GetForUpdate(ctx context.Context, recID id.ID) (*receiving.Receiving, error) {
	return r.GetByID(ctx, recID)
}

func (r *ReceivingRepo) Delete(ctx context.Context, recID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.receivings, recID)
	return nil
}

func (r *ReceivingRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*receiving.Receiving], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*receiving.Receiving
	for _, rec := range r.s.st.receivings {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		all = append(all, rec.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return page(all, filter), nil
}

// RequestRepo implements srequest.Repository.
type RequestRepo struct{ s *Store }

var _ srequest.Repository = (*RequestRepo)(nil)

// Requests returns the service request repository view.
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s: s} }

func (r *RequestRepo) Create(ctx context.Context, sr *srequest.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.requests[sr.ID] = sr.Clone()
	return nil
}

func (r *RequestRepo) Update(ctx context.Context, sr *srequest.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("srequest.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.requests[sr.ID]; !ok {
		return apperror.NewNotFound("s_requests", sr.ID.String())
	}
	r.s.st.requests[sr.ID] = sr.Clone()
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, srID id.ID) (*srequest.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.st.requests[srID]
	if !ok {
		return nil, apperror.NewNotFound("s_requests", srID.String())
	}
	return sr.Clone(), nil
}

func (r *RequestRepo) GetForUpdate(ctx context.Context, srID id.ID) (*srequest.ServiceRequest, error) {
	return r.GetByID(ctx, srID)
}

func (r *RequestRepo) Delete(ctx context.Context, srID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.requests, srID)
	return nil
}

func (r *RequestRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*srequest.ServiceRequest], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*srequest.ServiceRequest
	for _, sr := range r.s.st.requests {
		if filter.Status != "" && sr.Status != filter.Status {
			continue
		}
		all = append(all, sr.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return page(all, filter), nil
}
