// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"procura/internal/domain/documents/receiving"
	"procura/internal/infrastructure/storage/postgres"
)

var _ receiving.Repository = (*ReceivingRepo)(nil)

// ReceivingRepo persists receivings.
type ReceivingRepo struct {
	*postgres.BaseRepo[*receiving.Receiving]
}

// NewReceivingRepo creates a receiving repository.
func NewReceivingRepo(txManager *postgres.TxManager) *ReceivingRepo {
	base := postgres.NewBaseRepo(txManager, "receivings", "receiving", func() *receiving.Receiving { return new(receiving.Receiving) }).
		WithSearch("number", "document", "item_name", "supplier")
	return &ReceivingRepo{BaseRepo: base}
}
