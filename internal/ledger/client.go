// Package ledger talks to the token ledger node over JSON-RPC. It
// covers exactly the surface settlement needs: balance query and
// transaction submission.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TransferError reports a failed or refused token transfer.
type TransferError struct {
	From   string
	To     string
	Reason string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s -> %s failed: %s", e.From, e.To, e.Reason)
}

// Client is a thin JSON-RPC client for the ledger node.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a ledger client for the given RPC endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		endpoint:   endpoint,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call executes a single JSON-RPC request and decodes its result.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	reqBody := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(reqBody); err != nil {
		return fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc http error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("decode rpc result: %w", err)
		}
	}
	return nil
}

// Balance returns the token balance of an address.
func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	var balance uint64
	if err := c.call(ctx, "getBalance", []interface{}{address}, &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Transfer moves tokens between two wallet addresses. Self-transfers
// are refused, and the sender's balance must cover the amount.
func (c *Client) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if from == to {
		return &TransferError{From: from, To: to, Reason: "should avoid transfer to itself"}
	}

	balance, err := c.Balance(ctx, from)
	if err != nil {
		return &TransferError{From: from, To: to, Reason: fmt.Sprintf("balance query failed: %v", err)}
	}
	if balance < amount {
		return &TransferError{From: from, To: to, Reason: "not enough funds"}
	}

	params := []interface{}{
		map[string]interface{}{
			"from":   from,
			"to":     to,
			"amount": amount,
		},
	}
	var signature string
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return &TransferError{From: from, To: to, Reason: fmt.Sprintf("submission failed: %v", err)}
	}
	return nil
}
