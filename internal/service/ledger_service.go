package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/mailer"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// LedgerService owns the per-user annual cylinder allocation: the
// conditional decrement taken at booking time, the restore on rejection,
// and the calendar-year reset back to the default quota.
//
// Decrement and Restore participate in a caller's transaction when the
// context carries one, so the booking state machine commits its status
// write and the balance change atomically.
type LedgerService interface {
	// Decrement reserves one barrel and returns the new balance.
	// Returns ErrInsufficientBalance when the balance is already zero;
	// the balance never goes negative.
	Decrement(ctx context.Context, userID uuid.UUID) (int, error)
	// Restore returns one barrel, e.g. when a regular booking is rejected.
	Restore(ctx context.Context, userID uuid.UUID) (int, error)
	// ResetAll sets every user's balance to the annual default, writing
	// one BARREL_RESET log per user. One user's failure never aborts
	// the rest of the batch.
	ResetAll(ctx context.Context) error
	// ManualReset is the admin-triggered path, bracketed by audit logs
	// attributing the run.
	ManualReset(ctx context.Context, adminID uuid.UUID) error
	// IsResetDue reports whether the annual reset should run: true only
	// on January 1st and only while no BARREL_RESET log exists for that
	// calendar year. The log check, not the caller, prevents double
	// resets under at-least-once scheduling.
	IsResetDue(ctx context.Context, at time.Time) (bool, error)
	Stats(ctx context.Context) (model.BarrelStatsResponse, error)
}

type ledgerService struct {
	users repository.UserRepository
	logs  repository.LogRepository
	mail  mailer.Mailer
}

func NewLedgerService(users repository.UserRepository, logs repository.LogRepository, mail mailer.Mailer) LedgerService {
	return &ledgerService{users: users, logs: logs, mail: mail}
}

func (s *ledgerService) Decrement(ctx context.Context, userID uuid.UUID) (int, error) {
	ok, err := s.users.DecrementBarrels(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("decrement barrels: %w", err)
	}
	if !ok {
		return 0, ErrInsufficientBalance
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reload balance: %w", err)
	}
	return user.BarrelsRemaining, nil
}

func (s *ledgerService) Restore(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := s.users.IncrementBarrels(ctx, userID); err != nil {
		return 0, fmt.Errorf("restore barrel: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reload balance: %w", err)
	}
	return user.BarrelsRemaining, nil
}

func (s *ledgerService) ResetAll(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users for reset: %w", err)
	}

	log.Printf("barrel reset: resetting %d users", len(users))

	for _, u := range users {
		// Per-user failures are isolated so a single bad row or bounced
		// email cannot abort the annual batch.
		if err := s.users.SetBarrels(ctx, u.ID, model.DefaultAnnualBarrels); err != nil {
			log.Printf("barrel reset: failed to reset %s: %v", u.Email, err)
			continue
		}

		userID := u.ID
		entry := model.Log{
			UserID:  &userID,
			Action:  model.ActionBarrelReset,
			Details: fmt.Sprintf("Annual barrel reset: %d -> %d", u.BarrelsRemaining, model.DefaultAnnualBarrels),
		}
		if err := s.logs.Write(ctx, &entry); err != nil {
			log.Printf("barrel reset: failed to write log for %s: %v", u.Email, err)
		}

		if err := s.mail.SendBalanceNotification(u.Email, u.Name, model.DefaultAnnualBarrels, "annual reset"); err != nil {
			log.Printf("barrel reset: failed to notify %s: %v", u.Email, err)
		}
	}

	return nil
}

func (s *ledgerService) ManualReset(ctx context.Context, adminID uuid.UUID) error {
	pre := model.Log{
		UserID:  &adminID,
		Action:  model.ActionManualBarrelReset,
		Details: "Admin triggered manual barrel reset",
	}
	if err := s.logs.Write(ctx, &pre); err != nil {
		return fmt.Errorf("write manual reset log: %w", err)
	}

	if err := s.ResetAll(ctx); err != nil {
		return err
	}

	post := model.Log{
		UserID:  &adminID,
		Action:  model.ActionManualBarrelResetDone,
		Details: "Manual barrel reset completed",
	}
	if err := s.logs.Write(ctx, &post); err != nil {
		log.Printf("barrel reset: failed to write completion log: %v", err)
	}
	return nil
}

func (s *ledgerService) IsResetDue(ctx context.Context, at time.Time) (bool, error) {
	if at.Month() != time.January || at.Day() != 1 {
		return false, nil
	}

	yearStart := now.New(at).BeginningOfYear()
	yearEnd := yearStart.AddDate(1, 0, 0)

	done, err := s.logs.ExistsWithin(ctx, model.ActionBarrelReset, yearStart, yearEnd)
	if err != nil {
		return false, fmt.Errorf("check reset marker: %w", err)
	}
	return !done, nil
}

func (s *ledgerService) Stats(ctx context.Context) (model.BarrelStatsResponse, error) {
	var stats model.BarrelStatsResponse

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("load users for stats: %w", err)
	}

	stats.TotalUsers = int64(len(users))
	sum := 0
	for _, u := range users {
		sum += u.BarrelsRemaining
		if u.BarrelsRemaining > 0 {
			stats.UsersWithBarrels++
		}
	}
	if stats.TotalUsers > 0 {
		stats.AverageRemaining = float64(sum) / float64(stats.TotalUsers)
	}

	last, err := s.logs.LastByAction(ctx, model.ActionBarrelReset)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, fmt.Errorf("load last reset: %w", err)
	}
	if last != nil {
		t := last.CreatedAt
		stats.LastResetAt = &t
	}

	return stats, nil
}
