package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
)

// transferTopic is the topic-0 hash of the ERC-20 Transfer event, derived from
// its canonical signature so it cannot drift from the on-chain value.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")).Hex()

// InsightClient queries the Insight event indexer. The indexer is sharded per
// chain, so the base URL is a template parameterized by chain ID.
type InsightClient struct {
	urlTemplate string
	clientID    string
	timeout     time.Duration
	now         func() time.Time
}

// NewInsightClient creates a new Insight indexer client
func NewInsightClient(cfg *config.Config) *InsightClient {
	return &InsightClient{
		urlTemplate: cfg.InsightURLTemplate,
		clientID:    cfg.ThirdwebClientID,
		timeout:     cfg.HTTPTimeout,
		now:         time.Now,
	}
}

func (ic *InsightClient) chainClient(chainID int) *resty.Client {
	client := resty.New()
	client.SetBaseURL(fmt.Sprintf(ic.urlTemplate, chainID))
	client.SetTimeout(ic.timeout)
	client.SetHeader("x-client-id", ic.clientID)
	return client
}

type insightAggregationResponse struct {
	Aggregations []map[string]json.RawMessage `json:"aggregations"`
}

// HourlyTransferCounts returns hourly buckets of Transfer events for a token
// over the trailing 24 hours, newest bucket first as the indexer sorts them.
func (ic *InsightClient) HourlyTransferCounts(ctx context.Context, chainID int, tokenAddress string) ([]TransferCount, error) {
	address := NormalizeAddress(tokenAddress)
	since := ic.now().Unix() - 86400

	params := url.Values{}
	params.Set("filter_topic_0", transferTopic)
	params.Add("aggregate", "toStartOfHour(toDateTime(block_timestamp)) as date")
	params.Add("aggregate", "sum(1) as count")
	params.Set("filter_block_timestamp_gte", strconv.FormatInt(since, 10))
	params.Set("group_by", "date")
	params.Set("sort_by", "date")
	params.Set("sort_order", "desc")

	resp, err := ic.chainClient(chainID).R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(fmt.Sprintf("/v1/events/%s", address))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch transfer counts for %s: %w", address, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data insightAggregationResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse transfer count response: %w", err)
	}

	if len(data.Aggregations) == 0 {
		return nil, nil
	}

	// The aggregation comes back as an object keyed by bucket; only the values
	// that look like {date, count} entries are kept.
	counts := make([]TransferCount, 0, len(data.Aggregations[0]))
	for _, raw := range data.Aggregations[0] {
		var tc TransferCount
		if err := json.Unmarshal(raw, &tc); err != nil {
			continue
		}
		if tc.Date == "" {
			continue
		}
		counts = append(counts, tc)
	}

	return counts, nil
}

type insightTokensResponse struct {
	Data []UserToken `json:"data"`
}

// Erc20Tokens lists the ERC-20 balances the indexer knows for a wallet.
func (ic *InsightClient) Erc20Tokens(ctx context.Context, chainID int, walletAddress string) ([]UserToken, error) {
	address := NormalizeAddress(walletAddress)

	resp, err := ic.chainClient(chainID).R().
		SetContext(ctx).
		Get(fmt.Sprintf("/v1/%s/tokens/erc20/%s", ic.clientID, address))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch tokens for %s: %w", address, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var data insightTokensResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse token balance response: %w", err)
	}

	return data.Data, nil
}
