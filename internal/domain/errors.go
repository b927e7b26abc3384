package domain

import "errors"

var (
	// ErrInsufficientFunds is returned when cash cannot cover a purchase or withdrawal.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientQuantity is returned when selling more units than held.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrPositionNotFound is returned when a sell or update targets no position.
	ErrPositionNotFound = errors.New("position not found")
	// ErrUnsupportedAssetType is returned for an asset type the operation cannot handle.
	ErrUnsupportedAssetType = errors.New("unsupported asset type")
	// ErrInvalidTransaction is returned for malformed transaction input.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidCurrency is returned for a currency code other than ARS or USD.
	ErrInvalidCurrency = errors.New("invalid currency")
)
