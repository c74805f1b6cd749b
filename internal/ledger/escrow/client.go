package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	escrowdto "github.com/radieske/parimutuel-ledger-poc/internal/ledger/escrow/dto"
)

// Client fala com o escrow-service. Implementa engine.EscrowToken:
// Pull debita o apostador para a custódia, Push paga a partir da custódia.
// Qualquer status >= 300 vira erro e aborta a operação chamadora
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Pull(ctx context.Context, from string, amount int64) error {
	return c.post(ctx, "/escrow/pull", escrowdto.PullRequest{UserID: from, Amount: amount})
}

func (c *Client) Push(ctx context.Context, to string, amount int64) error {
	return c.post(ctx, "/escrow/push", escrowdto.PushRequest{UserID: to, Amount: amount})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("escrow %s http %d", path, res.StatusCode)
	}
	return nil
}
