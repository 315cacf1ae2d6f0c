package model

import "time"

// BarrelStatsResponse aggregates the allocation ledger state across all users
type BarrelStatsResponse struct {
	TotalUsers       int64      `json:"total_users"`
	UsersWithBarrels int64      `json:"users_with_barrels"`
	AverageRemaining float64    `json:"average_barrels_remaining"`
	LastResetAt      *time.Time `json:"last_reset_at"`
}
