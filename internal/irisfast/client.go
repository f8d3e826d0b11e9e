// Package irisfast talks to the Iris KakaoTalk bridge: HTTP for replies, websocket for incoming chat.
package irisfast

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-RPS-bot/internal/httpx"
)

type HeaderProvider = httpx.HeaderProvider

type Client struct {
	tr *httpx.Transport
}

type Option = httpx.Option

func WithTimeout(d time.Duration) Option { return httpx.WithTimeout(d) }

func WithHeaderProvider(h HeaderProvider) Option { return httpx.WithHeaderProvider(h) }

func WithRetry(max int) Option { return httpx.WithRetry(max) }

func WithMaxConnsPerHost(n int) Option { return httpx.WithMaxConnsPerHost(n) }

func NewClient(baseURL string, opts ...Option) *Client {
	return &Client{tr: httpx.New("iris", baseURL, opts...)}
}

func (c *Client) BaseURL() string { return c.tr.BaseURL() }

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.tr.DoJSON(ctx, fasthttp.MethodGet, "/config", nil, &cfg, false); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Decrypt(ctx context.Context, data string) (string, error) {
	var resp DecryptResponse
	if err := c.tr.DoJSON(ctx, fasthttp.MethodPost, "/decrypt", DecryptRequest{Data: data}, &resp, true); err != nil {
		return "", err
	}
	return resp.Decrypted, nil
}

// SendMessage posts a text reply. Not retried.
func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	req := ReplyRequest{Type: "text", Room: room, Data: message}
	return c.tr.DoJSON(ctx, fasthttp.MethodPost, "/reply", req, nil, false)
}
