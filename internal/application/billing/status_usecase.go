package billing

import (
	"context"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// StatusUseCase consulta el estado de cobro de la organización de la sesión.
type StatusUseCase struct {
	orgRepo repository.OrganizationRepository
}

// NewStatusUseCase construye el caso de uso.
func NewStatusUseCase(orgRepo repository.OrganizationRepository) *StatusUseCase {
	return &StatusUseCase{orgRepo: orgRepo}
}

// GetStatus estado, fecha de suspensión y si el acceso está bloqueado o con aviso.
func (uc *StatusUseCase) GetStatus(ctx context.Context, organizationID string) (*dto.BillingStatusResponse, error) {
	org, err := uc.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	status := org.EffectiveBillingStatus()
	return &dto.BillingStatusResponse{
		OrganizationID:    org.ID,
		Status:            string(status),
		AccessSuspendedAt: org.AccessSuspendedAt,
		Blocked:           status == entity.BillingStatusSuspended,
		Warning:           status == entity.BillingStatusOverdue,
	}, nil
}
