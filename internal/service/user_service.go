package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService covers the admin-facing account operations: listing,
// blocking/unblocking, deletion and per-user barrel adjustment.
type UserService interface {
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	ToggleStatus(ctx context.Context, id, adminID uuid.UUID) (*model.User, error)
	Delete(ctx context.Context, id, adminID uuid.UUID) error
	ResetBarrels(ctx context.Context, id, adminID uuid.UUID, count int) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*model.User, error)
}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	DefaultVendorID string `json:"default_vendor_id"`
}

type userService struct {
	users     repository.UserRepository
	agencies  repository.AgencyRepository
	logs      repository.LogRepository
	txManager repository.TransactionManager
}

func NewUserService(users repository.UserRepository, agencies repository.AgencyRepository, logs repository.LogRepository, txManager repository.TransactionManager) UserService {
	return &userService{users: users, agencies: agencies, logs: logs, txManager: txManager}
}

func (s *userService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.users.List(ctx, page, limit)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *userService) ToggleStatus(ctx context.Context, id, adminID uuid.UUID) (*model.User, error) {
	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		user, findErr = s.users.GetByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", findErr)
		}

		user.IsActive = !user.IsActive
		if saveErr := s.users.Update(txCtx, user); saveErr != nil {
			return fmt.Errorf("update user: %w", saveErr)
		}

		state := "blocked"
		if user.IsActive {
			state = "unblocked"
		}
		entry := model.Log{
			UserID:  &adminID,
			Action:  model.ActionUserToggleStatus,
			Details: fmt.Sprintf("Admin %s user %s", state, user.Email),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write toggle log: %w", logErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account. Bookings, logs and notification reads
// cascade at the database level.
func (s *userService) Delete(ctx context.Context, id, adminID uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, findErr := s.users.GetByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", findErr)
		}

		if delErr := s.users.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("delete user: %w", delErr)
		}

		entry := model.Log{
			UserID:  &adminID,
			Action:  model.ActionUserDelete,
			Details: fmt.Sprintf("Admin deleted user %s", user.Email),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write delete log: %w", logErr)
		}
		return nil
	})
}

// ResetBarrels sets a single user's balance, the admin's on-demand
// counterpart to the annual reset.
func (s *userService) ResetBarrels(ctx context.Context, id, adminID uuid.UUID, count int) (*model.User, error) {
	if count < 0 {
		count = model.DefaultAnnualBarrels
	}

	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		user, findErr = s.users.GetByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", findErr)
		}

		if setErr := s.users.SetBarrels(txCtx, id, count); setErr != nil {
			return fmt.Errorf("set barrels: %w", setErr)
		}

		entry := model.Log{
			UserID:  &adminID,
			Action:  model.ActionUserBarrelAdjust,
			Details: fmt.Sprintf("Admin set barrels for %s: %d -> %d", user.Email, user.BarrelsRemaining, count),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write adjust log: %w", logErr)
		}

		user.BarrelsRemaining = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.DefaultVendorID != "" {
		vendorID, parseErr := uuid.Parse(req.DefaultVendorID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid default vendor id: %w", parseErr)
		}
		if _, findErr := s.agencies.GetByID(ctx, vendorID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, ErrAgencyNotFound
			}
			return nil, fmt.Errorf("load default vendor: %w", findErr)
		}
		user.DefaultVendorID = &vendorID
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	log.Printf("user: profile updated for %s", user.Email)
	return user, nil
}
