package catalog_repo

import (
	"stockbook/internal/domain/catalogs/counterparty"
	"stockbook/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "counterparties"

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txManager *postgres.TxManager) *CounterpartyRepo {
	return &CounterpartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			counterpartyTable,
			postgres.ExtractDBColumns[counterparty.Counterparty](),
			func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
		),
	}
}
