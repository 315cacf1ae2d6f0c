package service

import (
	"context"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"
)

// AuditService exposes the append-only audit trail for the admin
// dashboard. Writes happen inside the owning services; this is a
// read-only view.
type AuditService interface {
	List(ctx context.Context, page, limit int) ([]model.Log, int64, error)
}

type auditService struct {
	logs repository.LogRepository
}

func NewAuditService(logs repository.LogRepository) AuditService {
	return &auditService{logs: logs}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]model.Log, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.logs.List(ctx, page, limit)
}
