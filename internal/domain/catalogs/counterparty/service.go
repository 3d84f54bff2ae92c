package counterparty

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
)

// Service provides business logic for the Counterparty catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Counterparty]
	repo Repository
}

// NewService creates a new Counterparty service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "counterparty",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// CheckForKind verifies the counterparty exists, is active, and serves the
// movement direction: suppliers for inbound, clients for outbound.
// Satisfies the movement engine's reference check.
func (s *Service) CheckForKind(ctx context.Context, counterpartyID id.ID, kind entity.Kind) error {
	cp, err := s.repo.GetByID(ctx, counterpartyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewInvalidReference("counterparty", counterpartyID.String(), "does not exist")
		}
		return err
	}
	if !cp.IsUsable() {
		return apperror.NewInvalidReference("counterparty", counterpartyID.String(), "is not active")
	}
	if !cp.ServesKind(kind) {
		reason := "is not a supplier"
		if kind == entity.KindOutbound {
			reason = "is not a client"
		}
		return apperror.NewInvalidReference("counterparty", counterpartyID.String(), reason)
	}
	return nil
}
