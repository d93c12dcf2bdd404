package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

const tokenTTL = 5 * time.Minute

// Member is a resident entry in a status answer
type Member struct {
	ID   models.ResidentID `json:"id"`
	Nama string            `json:"nama"`
}

// StatusResponse is the answer of GET /api/public/iuran/status
type StatusResponse struct {
	Amount  int64    `json:"amount"`
	Paid    []Member `json:"paid"`
	Pending []Member `json:"pending"`
}

// IuranClient talks to the hosted dues (iuran) service
type IuranClient struct {
	baseURL   string
	komplekID string
	secret    []byte
	http      *http.Client
	now       func() time.Time
}

// NewIuranClient creates a client for baseURL. An empty secret sends unauthenticated requests.
func NewIuranClient(baseURL, komplekID, secret string, timeout time.Duration) *IuranClient {
	return &IuranClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		komplekID: komplekID,
		secret:    []byte(secret),
		http:      &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// Status fetches the paid/pending breakdown of a period
func (c *IuranClient) Status(ctx context.Context, period string) (*StatusResponse, error) {
	q := url.Values{}
	q.Set("komplek_id", c.komplekID)
	q.Set("periode", period)

	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/public/iuran/status?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate creates the dues config of the current month
func (c *IuranClient) Generate(ctx context.Context, period string, amount int64) error {
	body := map[string]interface{}{
		"komplek_id": c.komplekID,
		"periode":    period,
		"amount":     amount,
	}
	return c.do(ctx, http.MethodPost, "/api/iuran/generate", body, nil)
}

// Mark sets one resident's payment status
func (c *IuranClient) Mark(ctx context.Context, period, residentID string, paid bool, amount int64) error {
	body := map[string]interface{}{
		"komplek_id": c.komplekID,
		"periode":    period,
		"warga_id":   idValue(residentID),
		"paid":       paid,
		"amount":     amount,
	}
	return c.do(ctx, http.MethodPost, "/api/iuran/mark", body, nil)
}

// UpdateNominal reprices a period retroactively
func (c *IuranClient) UpdateNominal(ctx context.Context, period string, amount int64) error {
	body := map[string]interface{}{
		"nominal": amount,
		"periode": period,
	}
	return c.do(ctx, http.MethodPost, "/api/iuran/update-nominal", body, nil)
}

func (c *IuranClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(c.secret) > 0 {
		token, err := c.serviceToken()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote dues service unreachable: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Remote dues call", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// serviceToken signs a short-lived HS256 token identifying this komplek
func (c *IuranClient) serviceToken() (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "komplek-api",
		Subject:   c.komplekID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}

// idValue sends numeric resident ids as JSON numbers, matching the roster's id column
func idValue(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
