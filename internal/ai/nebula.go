package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
)

// NebulaClient handles the on-chain reasoning model. Nebula is session based:
// every question opens a fresh session scoped to a chain and a set of
// addresses, then chats once inside it.
type NebulaClient struct {
	client    *resty.Client
	secretKey string
}

// NewNebulaClient creates a new Nebula client
func NewNebulaClient(cfg *config.Config) *NebulaClient {
	client := resty.New()
	client.SetBaseURL(cfg.NebulaBaseURL)
	client.SetTimeout(cfg.LLMTimeout)

	return &NebulaClient{
		client:    client,
		secretKey: cfg.ThirdwebSecretKey,
	}
}

type nebulaContextFilter struct {
	ChainIDs          []string `json:"chain_ids"`
	ContractAddresses []string `json:"contract_addresses"`
	WalletAddresses   []string `json:"wallet_addresses,omitempty"`
}

type nebulaExecuteConfig struct {
	Mode                string `json:"mode"`
	SignerWalletAddress string `json:"signer_wallet_address,omitempty"`
}

type nebulaSessionRequest struct {
	Title         string              `json:"title"`
	ExecuteConfig nebulaExecuteConfig `json:"execute_config"`
	ContextFilter nebulaContextFilter `json:"context_filter"`
}

type nebulaSessionResponse struct {
	Result struct {
		ID string `json:"id"`
	} `json:"result"`
}

type nebulaChatRequest struct {
	Message       string              `json:"message"`
	SessionID     string              `json:"session_id"`
	Stream        bool                `json:"stream"`
	ContextFilter nebulaContextFilter `json:"context_filter"`
}

// Ask opens a session scoped to the token (and optionally the wallet), asks the
// question inside it, and returns the answer text. The answer lives in the
// top-level "response" field on newer API versions and under "result.response"
// on older ones; if neither is present the raw body is returned so the caller
// still gets something to synthesize from.
func (nc *NebulaClient) Ask(ctx context.Context, question string, chainID int, tokenAddress, walletAddress string) (string, error) {
	if nc.secretKey == "" {
		return "", fmt.Errorf("Thirdweb secret key not configured")
	}

	filter := nebulaContextFilter{
		ChainIDs:          []string{strconv.Itoa(chainID)},
		ContractAddresses: []string{tokenAddress},
	}
	if walletAddress != "" {
		filter.WalletAddresses = []string{walletAddress}
	}

	sessionID, err := nc.createSession(ctx, tokenAddress, walletAddress, filter)
	if err != nil {
		return "", err
	}

	resp, err := nc.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-secret-key", nc.secretKey).
		SetBody(nebulaChatRequest{
			Message:       question,
			SessionID:     sessionID,
			Stream:        false,
			ContextFilter: filter,
		}).
		Post("/chat")

	if err != nil {
		return "", fmt.Errorf("failed to call Nebula: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	return extractNebulaAnswer(resp.Body()), nil
}

func (nc *NebulaClient) createSession(ctx context.Context, tokenAddress, walletAddress string, filter nebulaContextFilter) (string, error) {
	resp, err := nc.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-secret-key", nc.secretKey).
		SetBody(nebulaSessionRequest{
			Title: fmt.Sprintf("Token analysis %s", tokenAddress),
			ExecuteConfig: nebulaExecuteConfig{
				Mode:                "client",
				SignerWalletAddress: walletAddress,
			},
			ContextFilter: filter,
		}).
		Post("/session")

	if err != nil {
		return "", fmt.Errorf("failed to create Nebula session: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var session nebulaSessionResponse
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return "", fmt.Errorf("failed to parse Nebula session response: %w", err)
	}

	if session.Result.ID == "" {
		return "", fmt.Errorf("Nebula session response missing session id")
	}

	return session.Result.ID, nil
}

func extractNebulaAnswer(body []byte) string {
	var parsed struct {
		Response string `json:"response"`
		Result   struct {
			Response string `json:"response"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Response != "" {
			return parsed.Response
		}
		if parsed.Result.Response != "" {
			return parsed.Result.Response
		}
	}
	return strings.TrimSpace(string(body))
}
