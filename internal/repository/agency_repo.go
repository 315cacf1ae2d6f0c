package repository

import (
	"context"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgencyRepository interface {
	Create(ctx context.Context, agency *model.Agency) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Agency, error)
	GetByEmail(ctx context.Context, email string) (*model.Agency, error)
	// ListVerified returns agencies visible in the public directory.
	ListVerified(ctx context.Context, page, limit int) ([]model.Agency, int64, error)
	List(ctx context.Context, page, limit int) ([]model.Agency, int64, error)
	Update(ctx context.Context, agency *model.Agency) error
}

type agencyRepository struct {
	db *gorm.DB
}

func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &agencyRepository{db: db}
}

func (r *agencyRepository) Create(ctx context.Context, agency *model.Agency) error {
	return GetDB(ctx, r.db).Create(agency).Error
}

func (r *agencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Agency, error) {
	var agency model.Agency
	if err := GetDB(ctx, r.db).First(&agency, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) GetByEmail(ctx context.Context, email string) (*model.Agency, error) {
	var agency model.Agency
	if err := GetDB(ctx, r.db).First(&agency, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) ListVerified(ctx context.Context, page, limit int) ([]model.Agency, int64, error) {
	var agencies []model.Agency
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Agency{}).Where("is_verified = ? AND is_active = ?", true, true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Where("is_verified = ? AND is_active = ?", true, true).
		Order("name asc").Offset(offset).Limit(limit).Find(&agencies).Error; err != nil {
		return nil, 0, err
	}

	return agencies, total, nil
}

func (r *agencyRepository) List(ctx context.Context, page, limit int) ([]model.Agency, int64, error) {
	var agencies []model.Agency
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Agency{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&agencies).Error; err != nil {
		return nil, 0, err
	}

	return agencies, total, nil
}

func (r *agencyRepository) Update(ctx context.Context, agency *model.Agency) error {
	return GetDB(ctx, r.db).Save(agency).Error
}
