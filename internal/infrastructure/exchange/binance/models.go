package binance

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"usdt-perp-symbols/internal/domain/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNotAnObject = errors.New("response body is not a JSON object")

// exchangeInfoResponse is the envelope of GET /fapi/v1/exchangeInfo. Records
// are kept raw so a malformed entry only drops itself.
type exchangeInfoResponse struct {
	Symbols []jsoniter.RawMessage `json:"symbols"`
}

// decodeExchangeInfo decodes the body; it fails only when the envelope
// itself is not a JSON object with an optional symbols array
func decodeExchangeInfo(body []byte) (*entities.ExchangeInfo, int, error) {
	if !isJSONObject(body) {
		return nil, 0, errNotAnObject
	}

	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, err
	}

	info := &entities.ExchangeInfo{
		Symbols: make([]entities.SymbolRecord, 0, len(resp.Symbols)),
	}
	skipped := 0
	for _, raw := range resp.Symbols {
		var record entities.SymbolRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			skipped++
			continue
		}
		info.Symbols = append(info.Symbols, record)
	}

	return info, skipped, nil
}

// isJSONObject checks the first token only; null would otherwise decode as an empty envelope
func isJSONObject(body []byte) bool {
	iter := json.BorrowIterator(body)
	defer json.ReturnIterator(iter)
	return iter.WhatIsNext() == jsoniter.ObjectValue
}
