package interfaces

import (
	"context"

	"usdt-perp-symbols/internal/domain/entities"
)

// ExchangeInfoSource fetches symbol metadata from an exchange
type ExchangeInfoSource interface {
	FetchExchangeInfo(ctx context.Context) (*entities.ExchangeInfo, error)
}
