package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterUserRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	DefaultVendorID string `json:"default_vendor_id"`
}

type RegisterAgencyRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	LicenseNumber  string `json:"license_number" binding:"required"`
	CylinderPrice  string `json:"cylinder_price"`
	DeliveryRadius int    `json:"delivery_radius"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Principal is the authenticated identity: either a User (role USER or
// ADMIN) or an Agency (role AGENCY). Resolving the entity once at login
// keeps the role discriminant explicit downstream.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type TokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	Principal    Principal `json:"user"`
}

// --- Interface ---

type AuthService interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*model.User, error)
	RegisterAgency(ctx context.Context, req RegisterAgencyRequest) (*model.Agency, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

type authService struct {
	users    repository.UserRepository
	agencies repository.AgencyRepository
	logs     repository.LogRepository
	tokens   *gorm.DB // refresh token storage shares the primary DB
}

func NewAuthService(users repository.UserRepository, agencies repository.AgencyRepository, logs repository.LogRepository, db *gorm.DB) AuthService {
	return &authService{users: users, agencies: agencies, logs: logs, tokens: db}
}

// --- Implementation ---

func (s *authService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*model.User, error) {
	if taken, err := s.emailTaken(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hashed),
		Role:             model.RoleUser,
		Phone:            req.Phone,
		Address:          req.Address,
		BarrelsRemaining: model.DefaultAnnualBarrels,
		IsActive:         true,
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

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	userID := user.ID
	entry := model.Log{
		UserID:  &userID,
		Action:  model.ActionUserRegister,
		Details: fmt.Sprintf("User %s registered", user.Email),
	}
	if err := s.logs.Write(ctx, &entry); err != nil {
		log.Printf("auth: failed to write registration log: %v", err)
	}

	return &user, nil
}

func (s *authService) RegisterAgency(ctx context.Context, req RegisterAgencyRequest) (*model.Agency, error) {
	if taken, err := s.emailTaken(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	price := decimal.Zero
	if req.CylinderPrice != "" {
		parsed, parseErr := decimal.NewFromString(req.CylinderPrice)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid cylinder price: %w", parseErr)
		}
		price = parsed
	}

	radius := req.DeliveryRadius
	if radius <= 0 {
		radius = 10
	}

	agency := model.Agency{
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hashed),
		Phone:          req.Phone,
		Address:        req.Address,
		LicenseNumber:  req.LicenseNumber,
		CylinderPrice:  price,
		DeliveryRadius: radius,
		IsVerified:     false, // admin verification gates login
		IsActive:       true,
	}

	if err := s.agencies.Create(ctx, &agency); err != nil {
		return nil, fmt.Errorf("create agency: %w", err)
	}

	entry := model.Log{
		Action:  model.ActionAgencyRegister,
		Details: fmt.Sprintf("Agency %s registered, awaiting verification", agency.Email),
	}
	if err := s.logs.Write(ctx, &entry); err != nil {
		log.Printf("auth: failed to write agency registration log: %v", err)
	}

	return &agency, nil
}

// Login resolves the email against users first and falls back to the
// agency table, producing a Principal tagged with the effective role.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var principal Principal
	var hashedPassword string

	user, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrAccountBlocked
		}
		principal = Principal{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
		hashedPassword = user.Password
	case errors.Is(err, gorm.ErrRecordNotFound):
		agency, agErr := s.agencies.GetByEmail(ctx, req.Email)
		if agErr != nil {
			if errors.Is(agErr, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("load agency: %w", agErr)
		}
		principal = Principal{ID: agency.ID, Name: agency.Name, Email: agency.Email, Role: model.RoleAgency}
		hashedPassword = agency.Password

		if bcErr := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); bcErr != nil {
			return nil, ErrInvalidCredentials
		}
		if !agency.IsVerified {
			return nil, ErrAgencyNotVerified
		}
		if !agency.IsActive {
			return nil, ErrAgencyInactive
		}
		return s.issueTokens(ctx, principal)
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcErr := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); bcErr != nil {
		return nil, ErrInvalidCredentials
	}

	userID := principal.ID
	entry := model.Log{
		UserID:  &userID,
		Action:  model.ActionLogin,
		Details: fmt.Sprintf("User with email %s logged in as %s", principal.Email, principal.Role),
	}
	if err := s.logs.Write(ctx, &entry); err != nil {
		log.Printf("auth: failed to write login log: %v", err)
	}

	return s.issueTokens(ctx, principal)
}

func (s *authService) emailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check user email: %w", err)
	}
	if _, err := s.agencies.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check agency email: %w", err)
	}
	return false, nil
}

func (s *authService) issueTokens(ctx context.Context, principal Principal) (*TokenResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  principal.ID.String(),
		"role": principal.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	refresh := model.RefreshToken{
		UserID:    principal.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.tokens.WithContext(ctx).Create(&refresh).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenResponse{Token: signed, RefreshToken: refresh.Token, Principal: principal}, nil
}
