package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpdateAgencyRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	CylinderPrice  string `json:"cylinder_price"`
	DeliveryRadius int    `json:"delivery_radius"`
}

// AgencyService serves the public agency directory and the
// agency/admin management surface.
type AgencyService interface {
	Directory(ctx context.Context, page, limit int) ([]model.Agency, int64, error)
	ListAll(ctx context.Context, page, limit int) ([]model.Agency, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Agency, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateAgencyRequest) (*model.Agency, error)
	Verify(ctx context.Context, id, adminID uuid.UUID) (*model.Agency, error)
	ToggleStatus(ctx context.Context, id, adminID uuid.UUID) (*model.Agency, error)
}

type agencyService struct {
	agencies repository.AgencyRepository
	logs     repository.LogRepository
}

func NewAgencyService(agencies repository.AgencyRepository, logs repository.LogRepository) AgencyService {
	return &agencyService{agencies: agencies, logs: logs}
}

func (s *agencyService) Directory(ctx context.Context, page, limit int) ([]model.Agency, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.agencies.ListVerified(ctx, page, limit)
}

func (s *agencyService) ListAll(ctx context.Context, page, limit int) ([]model.Agency, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.agencies.List(ctx, page, limit)
}

func (s *agencyService) Get(ctx context.Context, id uuid.UUID) (*model.Agency, error) {
	agency, err := s.agencies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, fmt.Errorf("load agency: %w", err)
	}
	return agency, nil
}

func (s *agencyService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateAgencyRequest) (*model.Agency, error) {
	agency, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		agency.Name = req.Name
	}
	if req.Phone != "" {
		agency.Phone = req.Phone
	}
	if req.Address != "" {
		agency.Address = req.Address
	}
	if req.CylinderPrice != "" {
		price, parseErr := decimal.NewFromString(req.CylinderPrice)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid cylinder price: %w", parseErr)
		}
		agency.CylinderPrice = price
	}
	if req.DeliveryRadius > 0 {
		agency.DeliveryRadius = req.DeliveryRadius
	}

	if err := s.agencies.Update(ctx, agency); err != nil {
		return nil, fmt.Errorf("update agency: %w", err)
	}
	return agency, nil
}

func (s *agencyService) Verify(ctx context.Context, id, adminID uuid.UUID) (*model.Agency, error) {
	agency, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	agency.IsVerified = true
	if err := s.agencies.Update(ctx, agency); err != nil {
		return nil, fmt.Errorf("update agency: %w", err)
	}

	entry := model.Log{
		UserID:  &adminID,
		Action:  model.ActionAgencyVerify,
		Details: fmt.Sprintf("Admin verified agency %s", agency.Email),
	}
	if logErr := s.logs.Write(ctx, &entry); logErr != nil {
		return nil, fmt.Errorf("write verify log: %w", logErr)
	}

	return agency, nil
}

func (s *agencyService) ToggleStatus(ctx context.Context, id, adminID uuid.UUID) (*model.Agency, error) {
	agency, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	agency.IsActive = !agency.IsActive
	if err := s.agencies.Update(ctx, agency); err != nil {
		return nil, fmt.Errorf("update agency: %w", err)
	}

	state := "deactivated"
	if agency.IsActive {
		state = "activated"
	}
	entry := model.Log{
		UserID:  &adminID,
		Action:  model.ActionAgencyToggleStatus,
		Details: fmt.Sprintf("Admin %s agency %s", state, agency.Email),
	}
	if logErr := s.logs.Write(ctx, &entry); logErr != nil {
		return nil, fmt.Errorf("write toggle log: %w", logErr)
	}

	return agency, nil
}
