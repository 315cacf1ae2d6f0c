package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Piyushbhatti32/gas-agency/internal/database"
	"github.com/Piyushbhatti32/gas-agency/internal/mailer"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterWithDB(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mail := mailer.NewNop()
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	agencyRepo := repository.NewAgencyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewLogRepository(db)

	ledgerService := service.NewLedgerService(userRepo, logRepo, mail)
	bookingService := service.NewBookingService(bookingRepo, userRepo, agencyRepo, logRepo, ledgerService, txManager, mail, nil)
	authService := service.NewAuthService(userRepo, agencyRepo, logRepo, db)
	userService := service.NewUserService(userRepo, agencyRepo, logRepo, txManager)
	agencyService := service.NewAgencyService(agencyRepo, logRepo)
	notificationService := service.NewNotificationService(notificationRepo, logRepo, nil)
	auditService := service.NewAuditService(logRepo)

	r := gin.New()
	root := r.Group("")
	NewAuthHandler(authService, userService, agencyService).RegisterRoutes(root)
	NewUserHandler(userService).RegisterRoutes(root)
	NewBookingHandler(bookingService).RegisterRoutes(root)
	NewAgencyHandler(agencyService, bookingService).RegisterRoutes(root)
	NewAdminHandler(userService, agencyService, bookingService, auditService).RegisterRoutes(root)
	NewBarrelHandler(ledgerService).RegisterRoutes(root)
	NewNotificationHandler(notificationService).RegisterRoutes(root)

	return r, db
}

func httpDo(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedAdmin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := model.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, db.Create(&admin).Error)
	return &admin
}

func seedVerifiedAgency(t *testing.T, db *gorm.DB) *model.Agency {
	t.Helper()
	agency := model.Agency{
		Name:       "Verified Agency",
		Email:      "agency@example.com",
		Password:   "x",
		IsVerified: true,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&agency).Error)
	return &agency
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := httpDo(r, "POST", "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestRegisterLoginAndBookingFlow(t *testing.T) {
	r, db := setupRouterWithDB(t)
	seedAdmin(t, db)
	agency := seedVerifiedAgency(t, db)

	// Register a consumer.
	w := httpDo(r, "POST", "/api/auth/register", "", gin.H{
		"name":     "Flow User",
		"email":    "flow@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	userToken := login(t, r, "flow@example.com", "password123")
	adminToken := login(t, r, "admin@example.com", "admin-pass")

	// Creating a booking without a token is rejected.
	w = httpDo(r, "POST", "/api/booking/create", "", gin.H{
		"agency_id":      agency.ID.String(),
		"payment_method": model.PaymentMethodCOD,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Create a booking as the user.
	w = httpDo(r, "POST", "/api/booking/create", userToken, gin.H{
		"agency_id":      agency.ID.String(),
		"payment_method": model.PaymentMethodCOD,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, model.BookingPending, created.Data.Status)

	// The quota moved from 12 to 11.
	var user model.User
	require.NoError(t, db.First(&user, "email = ?", "flow@example.com").Error)
	require.Equal(t, 11, user.BarrelsRemaining)

	// A user cannot approve a booking.
	w = httpDo(r, "POST", "/api/booking/approve", userToken, gin.H{"booking_id": created.Data.ID.String()})
	require.Equal(t, http.StatusForbidden, w.Code)

	// The admin approves it.
	w = httpDo(r, "POST", "/api/booking/approve", adminToken, gin.H{"booking_id": created.Data.ID.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A second approval is a 400: the booking left PENDING.
	w = httpDo(r, "POST", "/api/booking/approve", adminToken, gin.H{"booking_id": created.Data.ID.String()})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Booking history shows the approved booking.
	w = httpDo(r, "GET", "/api/booking/history", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data  []model.Booking `json:"data"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.EqualValues(t, 1, history.Total)
	require.Equal(t, model.BookingApproved, history.Data[0].Status)
}

func TestBarrelResetEndpoints(t *testing.T) {
	r, db := setupRouterWithDB(t)
	seedAdmin(t, db)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, db.Create(&model.User{
		Name: "Low", Email: "low@example.com", Password: string(hashed),
		Role: model.RoleUser, BarrelsRemaining: 1, IsActive: true,
	}).Error)

	adminToken := login(t, r, "admin@example.com", "admin-pass")

	w := httpDo(r, "GET", "/api/admin/barrel-reset", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httpDo(r, "POST", "/api/admin/barrel-reset", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user model.User
	require.NoError(t, db.First(&user, "email = ?", "low@example.com").Error)
	require.Equal(t, model.DefaultAnnualBarrels, user.BarrelsRemaining)

	// Non-admins cannot touch the reset endpoints.
	w = httpDo(r, "POST", "/api/admin/barrel-reset", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAgencyDirectoryIsPublic(t *testing.T) {
	r, db := setupRouterWithDB(t)
	seedVerifiedAgency(t, db)
	require.NoError(t, db.Create(&model.Agency{
		Name: "Hidden", Email: "hidden@example.com", Password: "x",
		IsVerified: false, IsActive: true,
	}).Error)

	w := httpDo(r, "GET", "/api/agencies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data  []model.Agency `json:"data"`
		Total int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp.Total)
	require.Equal(t, "Verified Agency", resp.Data[0].Name)
}

func TestNotificationRoutes(t *testing.T) {
	r, db := setupRouterWithDB(t)
	seedAdmin(t, db)

	w := httpDo(r, "POST", "/api/auth/register", "", gin.H{
		"name": "Reader", "email": "reader@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	adminToken := login(t, r, "admin@example.com", "admin-pass")
	userToken := login(t, r, "reader@example.com", "password123")

	// Users cannot publish broadcasts.
	w = httpDo(r, "POST", "/api/notifications", userToken, gin.H{"title": "t", "message": "m"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httpDo(r, "POST", "/api/notifications", adminToken, gin.H{"title": "Outage", "message": "Planned downtime."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httpDo(r, "POST", "/api/notifications/"+created.Data.ID.String()+"/read", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httpDo(r, "GET", "/api/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []service.UserNotification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.True(t, list.Data[0].IsRead)
}
