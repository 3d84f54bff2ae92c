package handlers

import (
	"stockbook/internal/domain/catalogs/counterparty"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// CounterpartyHTTPHandler is the catalog handler bound to counterparties.
type CounterpartyHTTPHandler = CatalogHandler[
	*counterparty.Counterparty,
	dto.CreateCounterpartyRequest,
	dto.UpdateCounterpartyRequest,
]

// NewCounterpartyHandler wires the generic catalog handler with counterparty mappers.
func NewCounterpartyHandler(
	base *BaseHandler,
	service *counterparty.Service,
) *CounterpartyHTTPHandler {

	config := CatalogHandlerConfig[
		*counterparty.Counterparty,
		dto.CreateCounterpartyRequest,
		dto.UpdateCounterpartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "counterparty",

		MapCreateDTO: func(req dto.CreateCounterpartyRequest) *counterparty.Counterparty {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) *counterparty.Counterparty {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *counterparty.Counterparty) any {
			return dto.FromCounterparty(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
