package domain

import (
	"encoding/json"
	"fmt"
)

// EncodePosition marshals p with a "type" discriminator.
func EncodePosition(p Position) ([]byte, error) {
	return withType(p, string(p.AssetType()))
}

// DecodePosition unmarshals a position written by EncodePosition.
func DecodePosition(data []byte) (Position, error) {
	var head struct {
		Type AssetType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read position type: %w", err)
	}
	return DecodePositionAs(head.Type, data)
}

// DecodePositionAs unmarshals data into the variant named by t.
func DecodePositionAs(t AssetType, data []byte) (Position, error) {
	var p Position
	switch t {
	case AssetStock:
		p = &StockPosition{}
	case AssetBond:
		p = &BondPosition{}
	case AssetCrypto:
		p = &CryptoPosition{}
	case AssetFixedTermDeposit:
		p = &FixedTermDepositPosition{}
	case AssetCaucion:
		p = &CaucionPosition{}
	case AssetMutualFund:
		p = &MutualFundPosition{}
	case AssetRealEstate:
		p = &RealEstatePosition{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAssetType, t)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s position: %w", t, err)
	}
	return p, nil
}

// EncodeTransaction marshals tx with a "type" discriminator.
func EncodeTransaction(tx Transaction) ([]byte, error) {
	return withType(tx, string(tx.Kind()))
}

// DecodeTransaction unmarshals a transaction written by EncodeTransaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	var head struct {
		Type TransactionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read transaction type: %w", err)
	}
	return DecodeTransactionAs(head.Type, data)
}

// DecodeTransactionAs unmarshals data into the variant for kind.
func DecodeTransactionAs(kind TransactionType, data []byte) (Transaction, error) {
	var tx Transaction
	switch kind {
	case TxDeposit:
		tx = &DepositTransaction{}
	case TxWithdrawal:
		tx = &WithdrawalTransaction{}
	case TxBuy, TxSell:
		tx = &TradeTransaction{Side: kind}
	case TxCreate:
		tx = &CreationTransaction{}
	case TxFixedTermCredit, TxCaucionCredit:
		tx = &MaturityCreditTransaction{CreditType: kind}
	case TxBondCouponPayment, TxBondAmortization:
		tx = &BondPaymentTransaction{PaymentType: kind}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, kind)
	}
	if err := json.Unmarshal(data, tx); err != nil {
		return nil, fmt.Errorf("failed to decode %s transaction: %w", kind, err)
	}
	return tx, nil
}

// PositionList marshals each element with its type discriminator.
type PositionList []Position

// MarshalJSON implements json.Marshaler.
func (l PositionList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, p := range l {
		raw, err := EncodePosition(p)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *PositionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	list := make(PositionList, 0, len(raws))
	for _, raw := range raws {
		p, err := DecodePosition(raw)
		if err != nil {
			return err
		}
		list = append(list, p)
	}
	*l = list
	return nil
}

// TransactionList marshals each element with its type discriminator.
type TransactionList []Transaction

// MarshalJSON implements json.Marshaler.
func (l TransactionList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, tx := range l {
		raw, err := EncodeTransaction(tx)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func withType(v interface{}, typ string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	t, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}
	fields["type"] = t
	return json.Marshal(fields)
}
