package models

import "time"

// DepositRequest is the payload for single deposits and withdrawals.
type DepositRequest struct {
	Owner  string `json:"owner"`
	ItemID int64  `json:"item_id"`
}

// BatchRequest is the payload for batched deposits and withdrawals.
type BatchRequest struct {
	Owner   string  `json:"owner"`
	ItemIDs []int64 `json:"item_ids"`
}

// DepositResponse confirms a committed deposit.
type DepositResponse struct {
	Owner    string    `json:"owner"`
	ItemID   int64     `json:"item_id"`
	StakedAt time.Time `json:"staked_at"`
}

// WithdrawResponse confirms a committed withdrawal and reports how long the
// item was in custody.
type WithdrawResponse struct {
	Owner           string    `json:"owner"`
	ItemID          int64     `json:"item_id"`
	WithdrawnAt     time.Time `json:"withdrawn_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// BatchResponse confirms a committed batch.
type BatchResponse struct {
	Owner   string  `json:"owner"`
	ItemIDs []int64 `json:"item_ids"`
	Count   int     `json:"count"`
}

// RecordResponse is the per-item stake record view.
type RecordResponse struct {
	ItemID   int64     `json:"item_id"`
	Owner    string    `json:"owner"`
	StakedAt time.Time `json:"staked_at"`
	IsStaked bool      `json:"is_staked"`
}

// OwnerItemsResponse lists an owner's items currently in custody.
type OwnerItemsResponse struct {
	Owner   string  `json:"owner"`
	ItemIDs []int64 `json:"item_ids"`
}

// StakingTimeResponse is the derived total staking time for one owner.
type StakingTimeResponse struct {
	Owner        string  `json:"owner"`
	TotalSeconds float64 `json:"total_seconds"`
	ActiveItems  int     `json:"active_items"`
}

// AdminRequest identifies the caller of an administrative operation.
type AdminRequest struct {
	Caller string `json:"caller"`
}

// UpdateRegistryRequest swaps the registry the ledger transfers against.
type UpdateRegistryRequest struct {
	Caller   string `json:"caller"`
	DBSource string `json:"db_source"`
}
