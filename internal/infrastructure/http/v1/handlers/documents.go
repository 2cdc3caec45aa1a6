package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"procura/internal/core/id"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
	"procura/internal/infrastructure/http/v1/dto"
	"procura/internal/infrastructure/storage/postgres"
)

const defaultHistoryLimit = 50

// AuditHistory reads the audit trail of a record.
type AuditHistory interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// DocumentHandler adds the audit history endpoint to a CRUDHandler.
type DocumentHandler[T any, CreateDTO any, UpdateDTO any, Resp any] struct {
	*CRUDHandler[T, CreateDTO, UpdateDTO, Resp]
	history    AuditHistory
	entityType string
}

// History handles GET /{entity}/:id/history
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) History(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	entries, err := h.history.History(c.Request.Context(), h.entityType, docID,
		h.ParseIntQuery(c, "limit", defaultHistoryLimit))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}

// ReceivingHandler handles /receivings.
type ReceivingHandler = DocumentHandler[*receiving.Receiving, dto.CreateReceivingRequest, dto.UpdateReceivingRequest, dto.ReceivingResponse]

// NewReceivingHandler creates the receiving handler.
func NewReceivingHandler(base *BaseHandler, service CRUDService[*receiving.Receiving], history AuditHistory) *ReceivingHandler {
	return &ReceivingHandler{
		CRUDHandler: NewCRUDHandler(base, CRUDHandlerConfig[*receiving.Receiving, dto.CreateReceivingRequest, dto.UpdateReceivingRequest, dto.ReceivingResponse]{
			Service:      service,
			MapCreateDTO: (*dto.CreateReceivingRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateReceivingRequest).ApplyTo,
			MapToDTO:     dto.FromReceiving,
		}),
		history:    history,
		entityType: receiving.SourceType,
	}
}

// ServiceRequestHandler handles /s-requests.
type ServiceRequestHandler = DocumentHandler[*srequest.ServiceRequest, dto.CreateServiceRequestRequest, dto.UpdateServiceRequestRequest, dto.ServiceRequestResponse]

// NewServiceRequestHandler creates the service-request handler.
func NewServiceRequestHandler(base *BaseHandler, service CRUDService[*srequest.ServiceRequest], history AuditHistory) *ServiceRequestHandler {
	return &ServiceRequestHandler{
		CRUDHandler: NewCRUDHandler(base, CRUDHandlerConfig[*srequest.ServiceRequest, dto.CreateServiceRequestRequest, dto.UpdateServiceRequestRequest, dto.ServiceRequestResponse]{
			Service:      service,
			MapCreateDTO: (*dto.CreateServiceRequestRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateServiceRequestRequest).ApplyTo,
			MapToDTO:     dto.FromServiceRequest,
		}),
		history:    history,
		entityType: srequest.SourceType,
	}
}
