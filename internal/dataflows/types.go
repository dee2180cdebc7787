package dataflows

import (
	"github.com/shopspring/decimal"
)

// TransferCount is one hourly bucket of Transfer events for a token.
type TransferCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UserToken is one ERC-20 balance entry for a wallet.
type UserToken struct {
	ChainID      int    `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Balance      string `json:"balance"`
}

// Timeframe scopes a Cielo P&L query.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1d"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
	TimeframeMax Timeframe = "max"
)

// WalletStats is aggregate trading performance for a wallet on one chain.
type WalletStats struct {
	Wallet                  string          `json:"wallet"`
	RealizedPnLUSD          decimal.Decimal `json:"realized_pnl_usd"`
	RealizedROIPercentage   decimal.Decimal `json:"realized_roi_percentage"`
	TokensTraded            int             `json:"tokens_traded"`
	UnrealizedPnLUSD        decimal.Decimal `json:"unrealized_pnl_usd"`
	UnrealizedROIPercentage decimal.Decimal `json:"unrealized_roi_percentage"`
	Winrate                 decimal.Decimal `json:"winrate"`
	AverageHoldingTimeDays  decimal.Decimal `json:"average_holding_time"`
	CombinedPnLUSD          decimal.Decimal `json:"combined_pnl_usd"`
	CombinedROIPercentage   decimal.Decimal `json:"combined_roi_percentage"`
}

// TokenPnL is per-token trading performance for one (wallet, token) pair.
type TokenPnL struct {
	NumSwaps                int             `json:"num_swaps"`
	TotalBuyUSD             decimal.Decimal `json:"total_buy_usd"`
	TotalBuyAmount          decimal.Decimal `json:"total_buy_amount"`
	TotalSellUSD            decimal.Decimal `json:"total_sell_usd"`
	TotalSellAmount         decimal.Decimal `json:"total_sell_amount"`
	AverageBuyPrice         decimal.Decimal `json:"average_buy_price"`
	AverageSellPrice        decimal.Decimal `json:"average_sell_price"`
	TotalPnLUSD             decimal.Decimal `json:"total_pnl_usd"`
	ROIPercentage           decimal.Decimal `json:"roi_percentage"`
	UnrealizedPnLUSD        decimal.Decimal `json:"unrealized_pnl_usd"`
	UnrealizedROIPercentage decimal.Decimal `json:"unrealized_roi_percentage"`
	TokenPrice              decimal.Decimal `json:"token_price"`
	TokenAddress            string          `json:"token_address"`
	TokenSymbol             string          `json:"token_symbol"`
	TokenName               string          `json:"token_name"`
	Chain                   string          `json:"chain"`
	IsHoneypot              bool            `json:"is_honeypot"`
	FirstTrade              int64           `json:"first_trade"`
	LastTrade               int64           `json:"last_trade"`
}

// HasPosition reports whether the wallet still holds more of the token than it
// has sold, in USD terms.
func (p *TokenPnL) HasPosition() bool {
	return p.TotalBuyUSD.GreaterThan(p.TotalSellUSD)
}

// CurrentPositionUSD is the USD size of the open position (buys minus sells).
func (p *TokenPnL) CurrentPositionUSD() decimal.Decimal {
	return p.TotalBuyUSD.Sub(p.TotalSellUSD)
}
