package razorpay

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"swiftcart/domain"
	"time"
)

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseUrl       string
	Currency      string
}

type RazorpayRepository struct {
	razorpayConfig RazorpayConfig
	client         *http.Client
}

func NewRazorpayRepository(cfg RazorpayConfig) *RazorpayRepository {
	return &RazorpayRepository{
		razorpayConfig: cfg,
		client:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *RazorpayRepository) KeyID() string {
	return r.razorpayConfig.KeyID
}

func (r *RazorpayRepository) Currency() string {
	return r.razorpayConfig.Currency
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder registers a hosted-checkout order with the gateway. amount is
// in the smallest currency unit (paise for INR). notes round-trip through
// the webhook payload, which is how the internal order id comes back.
func (r *RazorpayRepository) CreateOrder(amount int64, receipt string, notes map[string]string) (domain.RazorpayOrderResponse, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: r.razorpayConfig.Currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return domain.RazorpayOrderResponse{}, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	url := r.razorpayConfig.BaseUrl + "/orders"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.RazorpayOrderResponse{}, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.SetBasicAuth(r.razorpayConfig.KeyID, r.razorpayConfig.KeySecret)

	res, err := r.client.Do(req)
	if err != nil {
		return domain.RazorpayOrderResponse{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.RazorpayOrderResponse{}, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.RazorpayOrderResponse{}, fmt.Errorf("gateway returned %d: %s", res.StatusCode, string(body))
	}

	var orderResponse domain.RazorpayOrderResponse
	if err := json.Unmarshal(body, &orderResponse); err != nil {
		return domain.RazorpayOrderResponse{}, fmt.Errorf("failed to unmarshal gateway response: %w", err)
	}

	return orderResponse, nil
}

// VerifyPaymentSignature checks the checkout-callback signature: HMAC-SHA256
// of "<gateway_order_id>|<gateway_payment_id>" with the key secret.
func (r *RazorpayRepository) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.razorpayConfig.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header: HMAC-SHA256
// of the raw request body with the webhook secret.
func (r *RazorpayRepository) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.razorpayConfig.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
