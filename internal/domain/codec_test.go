package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionList_DecodesEachVariantByType(t *testing.T) {
	payload := `[
		{"type":"Stock","symbol":"AAPL.BA","quantity":3,"purchasePrice":12000,"currency":"ARS","market":"BCBA"},
		{"type":"Crypto","symbol":"BTCUSDT","quantity":0.5,"averagePrice":40000},
		{"type":"FixedTermDeposit","id":"ftd-1","provider":"Banco","amount":10000,"annualRate":36.5,"startDate":"2024-01-01","maturityDate":"2024-01-31","currency":"ARS"},
		{"type":"MutualFund","id":"mf-1","name":"Balanz Money Market","category":"Money Market","amount":5000,"annualRate":30,"startDate":"2024-01-01T10:00:00Z","currency":"ARS"}
	]`

	var list PositionList
	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list, 4)

	stock, ok := list[0].(*StockPosition)
	require.True(t, ok)
	assert.Equal(t, MarketBCBA, stock.Market)

	crypto, ok := list[1].(*CryptoPosition)
	require.True(t, ok)
	basis, ok := crypto.CostBasis()
	require.True(t, ok)
	assert.Equal(t, 40000.0, basis)

	deposit, ok := list[2].(*FixedTermDepositPosition)
	require.True(t, ok)
	assert.Equal(t, 30, deposit.Term())

	fund, ok := list[3].(*MutualFundPosition)
	require.True(t, ok)
	require.NotNil(t, fund.StartDate)
	assert.Equal(t, "2024-01-01", fund.StartDate.String())
}

func TestEncodePosition_WritesDiscriminator(t *testing.T) {
	raw, err := EncodePosition(&CaucionPosition{LendingTerms{ID: "c-1", Amount: 50000, Currency: CurrencyARS, StartDate: NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "Caucion", fields["type"])
	assert.Equal(t, "2024-01-01", fields["startDate"])
}

func TestDecodeTransaction(t *testing.T) {
	tx, err := DecodeTransaction([]byte(`{"type":"Sell","assetType":"Stock","symbol":"AAPL","quantity":5,"price":200,"currency":"USD","date":"2024-02-01T00:00:00Z"}`))
	require.NoError(t, err)

	trade, ok := tx.(*TradeTransaction)
	require.True(t, ok)
	assert.Equal(t, TxSell, trade.Kind())
	assert.Equal(t, 1000.0, trade.GrossAmount())

	_, err = DecodeTransaction([]byte(`{"type":"Refund"}`))
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = DecodePositionAs("Option", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnsupportedAssetType)
}
