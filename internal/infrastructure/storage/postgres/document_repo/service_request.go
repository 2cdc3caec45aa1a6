package document_repo

import (
	"procura/internal/domain/documents/srequest"
	"procura/internal/infrastructure/storage/postgres"
)

var _ srequest.Repository = (*ServiceRequestRepo)(nil)

// ServiceRequestRepo persists service requests. Line items are stored as JSONB.
type ServiceRequestRepo struct {
	*postgres.BaseRepo[*srequest.ServiceRequest]
}

// NewServiceRequestRepo creates a service request repository.
func NewServiceRequestRepo(txManager *postgres.TxManager) *ServiceRequestRepo {
	base := postgres.NewBaseRepo(txManager, "s_requests", "service_request", func() *srequest.ServiceRequest { return new(srequest.ServiceRequest) }).
		WithSearch("number", "request_by", "cost_center", "location")
	return &ServiceRequestRepo{BaseRepo: base}
}
