package portfolio

import (
	"fmt"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// NewTradable builds an empty position for the asset a trade refers to.
func NewTradable(tx *domain.TradeTransaction) (domain.TradablePosition, error) {
	switch tx.AssetType {
	case domain.AssetStock:
		return &domain.StockPosition{Symbol: tx.Symbol, Currency: tx.Currency, Market: tx.Market}, nil
	case domain.AssetBond:
		return &domain.BondPosition{Ticker: tx.Symbol, Currency: tx.Currency, Market: tx.Market}, nil
	case domain.AssetCrypto:
		return &domain.CryptoPosition{Symbol: tx.Symbol, Currency: domain.CurrencyUSD}, nil
	}
	return nil, fmt.Errorf("%w: cannot trade %s", domain.ErrUnsupportedAssetType, tx.AssetType)
}

// LotCost is the booking-currency cost a buy adds to the position: the
// converted amount for crypto funded in another currency, otherwise the gross
// amount plus fees.
func LotCost(tx *domain.TradeTransaction) float64 {
	if _, _, ok := tx.FundedIn(); ok {
		if converted, ok := utils.FinitePtr(tx.ConvertedAmount); ok {
			return converted
		}
	}
	return tx.BuyCost()
}

// ApplyBuy adds the bought lot to the matching position, or appends a new one.
// The matched position is mutated in place; its cost basis becomes the running
// weighted average.
func ApplyBuy(positions []domain.Position, tx *domain.TradeTransaction) ([]domain.Position, domain.TradablePosition, error) {
	if tx.Side != domain.TxBuy {
		return positions, nil, fmt.Errorf("%w: %s is not a buy", domain.ErrInvalidTransaction, tx.Side)
	}
	if tx.Quantity <= 0 || !utils.IsFinite(tx.Quantity) || !utils.IsFinite(tx.Price) {
		return positions, nil, fmt.Errorf("%w: quantity and price must be positive numbers", domain.ErrInvalidTransaction)
	}

	proto, err := NewTradable(tx)
	if err != nil {
		return positions, nil, err
	}

	target := proto
	if i := indexOf(positions, proto.Key()); i >= 0 {
		existing, ok := positions[i].(domain.TradablePosition)
		if !ok {
			return positions, nil, fmt.Errorf("%w: %s is not tradable", domain.ErrUnsupportedAssetType, proto.Key())
		}
		target = existing
	} else {
		positions = append(positions, proto)
	}

	target.AddLot(tx.Quantity, LotCost(tx))
	return positions, target, nil
}

// ApplySell reduces the matching position and removes it once only dust is left.
// It reports whether the position was removed.
func ApplySell(positions []domain.Position, tx *domain.TradeTransaction) ([]domain.Position, bool, error) {
	if tx.Side != domain.TxSell {
		return positions, false, fmt.Errorf("%w: %s is not a sell", domain.ErrInvalidTransaction, tx.Side)
	}
	if tx.Quantity <= 0 || !utils.IsFinite(tx.Quantity) {
		return positions, false, fmt.Errorf("%w: quantity must be a positive number", domain.ErrInvalidTransaction)
	}

	proto, err := NewTradable(tx)
	if err != nil {
		return positions, false, err
	}

	i := indexOf(positions, proto.Key())
	if i < 0 {
		return positions, false, fmt.Errorf("%w: %s", domain.ErrPositionNotFound, proto.Key())
	}
	held, ok := positions[i].(domain.TradablePosition)
	if !ok {
		return positions, false, fmt.Errorf("%w: %s is not tradable", domain.ErrUnsupportedAssetType, proto.Key())
	}
	if err := held.Reduce(tx.Quantity); err != nil {
		return positions, false, err
	}

	if held.Closed() {
		return append(positions[:i:i], positions[i+1:]...), true, nil
	}
	return positions, false, nil
}

// RemovePosition drops the position with key, reporting whether it was present.
func RemovePosition(positions []domain.Position, key string) ([]domain.Position, bool) {
	i := indexOf(positions, key)
	if i < 0 {
		return positions, false
	}
	return append(positions[:i:i], positions[i+1:]...), true
}

func indexOf(positions []domain.Position, key string) int {
	for i, p := range positions {
		if p != nil && p.Key() == key {
			return i
		}
	}
	return -1
}
