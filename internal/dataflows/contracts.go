package dataflows

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
)

// ABIClient looks up verified contract ABIs.
type ABIClient struct {
	client *resty.Client
}

// NewABIClient creates a new contract ABI lookup client
func NewABIClient(cfg *config.Config) *ABIClient {
	client := resty.New()
	client.SetBaseURL(cfg.ContractLookupURL)
	client.SetTimeout(cfg.HTTPTimeout)

	return &ABIClient{client: client}
}

// ContractABI fetches the ABI for a contract. An unverified contract (404)
// returns empty with no error; the synthesis prompt reports it as unverified.
func (ac *ABIClient) ContractABI(ctx context.Context, chainID int, tokenAddress string) (string, error) {
	address := NormalizeAddress(tokenAddress)

	resp, err := ac.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/abi/%d/%s", chainID, address))

	if err != nil {
		return "", fmt.Errorf("failed to fetch ABI for %s: %w", address, err)
	}

	if resp.StatusCode() == 404 {
		return "", nil
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	return resp.String(), nil
}
