package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentalmate/internal/models"
	"rentalmate/internal/util"
)

// ErrSignatureMismatch rejects a payment whose signature does not match
// the server-side HMAC. No booking is created on mismatch.
var ErrSignatureMismatch = errors.New("payment verification failed")

// Gateway is the payment boundary. Implementations never create
// bookings; order creation only issues a handle and verification only
// checks the client-submitted proof.
type Gateway interface {
	CreateOrder(ctx context.Context, receipt string, amountMinor int64) (orderID string, err error)
	VerifySignature(orderID, paymentID, signature string) error
	// Method reports the payment method recorded on bookings this
	// gateway verifies.
	Method() string
}

// SimulatedGateway is the non-production gateway: synthetic order IDs,
// no external calls, every submitted payment accepted.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) CreateOrder(ctx context.Context, receipt string, amountMinor int64) (string, error) {
	return fmt.Sprintf("order_dev_%d", time.Now().UnixNano()), nil
}

func (g *SimulatedGateway) VerifySignature(orderID, paymentID, signature string) error {
	return nil
}

func (g *SimulatedGateway) Method() string {
	return models.PaymentMethodCash
}

// RazorpayGateway talks to the hosted Razorpay API. Amounts are in minor
// currency units (paise).
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	currency  string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL, currency string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		currency:  currency,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder creates an order with the gateway and returns its ID.
// Failures surface to the caller; no retry is attempted here.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, receipt string, amountMinor int64) (string, error) {
	start := time.Now()
	defer func() {
		util.GatewayRequestLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   amountMinor,
		Currency: g.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway order creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gateway order creation failed: status %d: %s", resp.StatusCode, payload)
	}

	var order razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("gateway order response decode failed: %w", err)
	}
	if order.ID == "" {
		return "", fmt.Errorf("gateway order response missing id")
	}
	return order.ID, nil
}

// VerifySignature recomputes the HMAC-SHA256 over "orderID|paymentID"
// with the key secret and compares it against the client-submitted
// signature in constant time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (g *RazorpayGateway) Method() string {
	return models.PaymentMethodRazorpay
}

var (
	_ Gateway = (*SimulatedGateway)(nil)
	_ Gateway = (*RazorpayGateway)(nil)
)
