package payment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

var (
	ErrMissingSecretKey = errors.New("payment gateway secret key is not configured")
	// ErrGatewayRejected means the gateway answered and said no: a non-2xx
	// response or a status:false envelope. Distinct from transport errors,
	// which are returned as-is.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

// StatusSuccess is the gateway's terminal good state for a transaction.
const StatusSuccess = "success"

// Metadata travels with the transaction so verification can find the local
// order even if the client-side flow was interrupted.
type Metadata struct {
	OrderID string `json:"order_id"`
}

// InitializeRequest starts a hosted-payment transaction. Amount is in the
// gateway's minor currency unit.
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

// InitializeResult is the hosted-payment handle returned by the gateway.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the gateway's authoritative view of a transaction.
// Amount is in minor units.
type VerifyResult struct {
	Status   string     `json:"status"`
	Amount   int64      `json:"amount"`
	PaidAt   *time.Time `json:"paid_at"`
	Metadata Metadata   `json:"metadata"`
}

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the payment gateway's transaction API with a bearer
// secret key.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) (*Client, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Initialize creates a gateway transaction and returns the hosted-payment
// handle.
func (c *Client) Initialize(ctx context.Context, initReq InitializeRequest) (*InitializeResult, error) {
	body, err := json.Marshal(initReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result InitializeResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed initialize response", ErrGatewayRejected)
	}
	if result.AccessCode == "" {
		return nil, fmt.Errorf("%w: initialize response missing access code", ErrGatewayRejected)
	}
	return &result, nil
}

// Verify fetches the authoritative transaction state for a reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed verify response", ErrGatewayRejected)
	}
	return &result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: undecodable response (%d)", ErrGatewayRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Status {
		if env.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, env.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRejected, resp.StatusCode)
	}
	return &env, nil
}

// NewReference builds a globally unique transaction reference. The random
// suffix keeps retried checkouts for the same order from colliding on the
// gateway side.
func NewReference(orderID string) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("ord_%s_%d_%s", short, time.Now().UnixNano(), hex.EncodeToString(suffix))
}

// ToMinorUnits converts a major-unit amount to the gateway's minor unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts a gateway minor-unit amount back to major units.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
