package service

import (
	"fmt"
	"testing"

	"github.com/Piyushbhatti32/gas-agency/internal/database"
	"github.com/Piyushbhatti32/gas-agency/internal/mailer"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full repository/service stack against a per-test
// in-memory database to avoid cross-test interference.
type testEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	agencies  repository.AgencyRepository
	bookings  repository.BookingRepository
	payments  repository.PaymentRepository
	logs      repository.LogRepository
	txManager repository.TransactionManager

	ledger  LedgerService
	booking BookingService
	auth    AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		agencies:  repository.NewAgencyRepository(db),
		bookings:  repository.NewBookingRepository(db),
		payments:  repository.NewPaymentRepository(db),
		logs:      repository.NewLogRepository(db),
		txManager: repository.NewTransactionManager(db),
	}
	env.ledger = NewLedgerService(env.users, env.logs, mailer.NewNop())
	env.booking = NewBookingService(env.bookings, env.users, env.agencies, env.logs, env.ledger, env.txManager, mailer.NewNop(), nil)
	env.auth = NewAuthService(env.users, env.agencies, env.logs, db)
	return env
}

func (e *testEnv) seedUser(t *testing.T, email string, barrels int) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{
		Name:             "Test User",
		Email:            email,
		Password:         string(hashed),
		Role:             model.RoleUser,
		BarrelsRemaining: barrels,
		IsActive:         true,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) seedAgency(t *testing.T, email string, verified bool) *model.Agency {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	agency := model.Agency{
		Name:       "Test Agency",
		Email:      email,
		Password:   string(hashed),
		IsVerified: verified,
		IsActive:   true,
	}
	require.NoError(t, e.db.Create(&agency).Error)
	return &agency
}

func (e *testEnv) countLogs(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.Log{}).Where("action = ?", action).Count(&count).Error)
	return count
}
