package data

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a cached order. Transitions are one-way:
// a terminal entry never goes back to an active state.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusPending   Status = "pending"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether moving to the given status is legal.
// Self-transitions are allowed so repeated polls are idempotent.
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return true
	}
	if s.Terminal() {
		return false
	}
	if s == StatusPending && to == StatusSubmitted {
		return false
	}
	return true
}

// OrderCacheEntry is the local mirror of a built order. It is created as soon
// as the order is constructed and survives relay rejections: a failed
// submission keeps the entry with the error attached instead of dropping it.
type OrderCacheEntry struct {
	ID        int64  `structs:"-" db:"id"`
	OrderHash string `structs:"order_hash" db:"order_hash"`
	Maker     string `structs:"maker" db:"maker"`
	Receiver  string `structs:"receiver" db:"receiver"`

	MakerAsset   string `structs:"maker_asset" db:"maker_asset"`
	TakerAsset   string `structs:"taker_asset" db:"taker_asset"`
	MakingAmount string `structs:"making_amount" db:"making_amount"`
	TakingAmount string `structs:"taking_amount" db:"taking_amount"`

	Salt      string    `structs:"salt" db:"salt"`
	Nonce     int64     `structs:"nonce" db:"nonce"`
	Traits    string    `structs:"traits" db:"traits"`
	Extension string    `structs:"extension" db:"extension"`
	Signature string    `structs:"signature" db:"signature"`
	ExpiresAt time.Time `structs:"expires_at,omitnested" db:"expires_at"`

	IndexID   sql.NullInt64  `structs:"index_id,omitempty,omitnested" db:"index_id"`
	Operator  sql.NullString `structs:"operator,omitempty,omitnested" db:"operator"`
	Threshold sql.NullString `structs:"threshold,omitempty,omitnested" db:"threshold"`

	ChainID           int64  `structs:"chain_id" db:"chain_id"`
	VerifyingContract string `structs:"verifying_contract" db:"verifying_contract"`

	Status       Status         `structs:"status" db:"status"`
	SubmitError  sql.NullString `structs:"submit_error,omitempty,omitnested" db:"submit_error"`
	FillTxHash   sql.NullString `structs:"fill_tx_hash,omitempty,omitnested" db:"fill_tx_hash"`
	CancelTxHash sql.NullString `structs:"cancel_tx_hash,omitempty,omitnested" db:"cancel_tx_hash"`

	CreatedAt time.Time `structs:"created_at,omitnested" db:"created_at"`
}

type Orders interface {
	Insert(OrderCacheEntry) error
	Get(orderHash string) (*OrderCacheEntry, error)
	Update(OrderCacheEntry) error
	ListByMaker(maker string) ([]OrderCacheEntry, error)
	ListConditional(conditional bool) ([]OrderCacheEntry, error)
	ListActive() ([]OrderCacheEntry, error)
	Delete(orderHash string) error
	DeleteByMaker(maker string) error
	DeleteAll() error
	DeleteTerminalBefore(t time.Time) error
}
