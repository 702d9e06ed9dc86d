package entities

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ContractTypePerpetual = "PERPETUAL"
	QuoteAssetUSDT        = "USDT"
)

// SymbolRecord is the part of an exchange symbol description we care about
type SymbolRecord struct {
	Symbol       string `json:"symbol"`
	ContractType string `json:"contractType"`
	QuoteAsset   string `json:"quoteAsset"`
}

// IsPerpetualUSDT reports whether the record describes a USDT-margined perpetual contract
func (r SymbolRecord) IsPerpetualUSDT() bool {
	return r.ContractType == ContractTypePerpetual && r.QuoteAsset == QuoteAssetUSDT
}

// ExchangeInfo is the decoded exchange metadata payload
type ExchangeInfo struct {
	Symbols []SymbolRecord `json:"symbols"`
}

// ExtractPerpetualUSDT collects the symbols of every USDT perpetual record in
// encounter order. Records without a symbol are skipped.
func ExtractPerpetualUSDT(info *ExchangeInfo) []string {
	symbols := []string{}
	if info == nil {
		return symbols
	}

	for _, record := range info.Symbols {
		if !record.IsPerpetualUSDT() || record.Symbol == "" {
			continue
		}
		symbols = append(symbols, record.Symbol)
	}
	return symbols
}

// Deduplicate drops repeated symbols, keeping the first occurrence
func Deduplicate(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	return unique
}

// IsDigitPrefixed reports whether the first character of symbol is a digit.
// The empty string is not digit-prefixed.
func IsDigitPrefixed(symbol string) bool {
	if symbol == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(symbol)
	return unicode.IsDigit(r)
}

// CompareSymbols orders symbols by (IsDigitPrefixed, lexicographic)
func CompareSymbols(a, b string) int {
	aDigit, bDigit := IsDigitPrefixed(a), IsDigitPrefixed(b)
	if aDigit != bDigit {
		if aDigit {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

// SortSymbols returns a sorted copy: alphabetic symbols first, digit-prefixed
// ones (e.g. 1000PEPEUSDT) last, each group ascending. The input is not modified.
func SortSymbols(symbols []string) []string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	slices.SortFunc(sorted, CompareSymbols)
	return sorted
}
