package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

const (
	checkoutSessionPath     = "create-checkout-session"
	paymentIntentPath       = "create-payment-intent"
	priceCheckoutPath       = "stripe-checkout"
	responseBodyReadLimit   = 64 << 10
	defaultFunctionTimeout  = 15 * time.Second
	checkoutSessionFallback = "Failed to create checkout session"
	paymentIntentFallback   = "Failed to create payment intent"
)

var errFunctionURLRequired = errors.New("gateway function url is required")

// FunctionGateway posts to the hosted checkout functions with the shopper's
// bearer token. Non-2xx responses carry {"error": "..."}.
type FunctionGateway struct {
	httpClient *http.Client
	baseURL    string
}

// NewFunctionGateway builds a client for the functions under baseURL.
func NewFunctionGateway(baseURL string, httpClient *http.Client) (*FunctionGateway, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errFunctionURLRequired
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFunctionTimeout}
	}
	return &FunctionGateway{httpClient: httpClient, baseURL: trimmed}, nil
}

func (g *FunctionGateway) Driver() string {
	return config.GatewayDriverFunction
}

type functionPriceData struct {
	Currency    string              `json:"currency"`
	ProductData functionProductData `json:"product_data"`
	UnitAmount  int64               `json:"unit_amount"`
}

type functionProductData struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type functionLineItem struct {
	PriceData functionPriceData `json:"price_data"`
	Quantity  int64             `json:"quantity"`
}

type functionCheckoutRequest struct {
	LineItems     []functionLineItem `json:"line_items"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	SuccessURL    string             `json:"success_url"`
	CancelURL     string             `json:"cancel_url"`
	Metadata      map[string]string  `json:"metadata,omitempty"`
}

type functionPriceCheckoutRequest struct {
	PriceID       string            `json:"price_id"`
	Mode          string            `json:"mode"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type functionCheckoutResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type functionPaymentIntentRequest struct {
	Amount   int64               `json:"amount"`
	Currency string              `json:"currency,omitempty"`
	Items    []PaymentIntentItem `json:"items"`
	Shipping types.ShippingInfo  `json:"shipping"`
	UserID   string              `json:"user_id,omitempty"`
}

type functionPaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type functionErrorResponse struct {
	Error string `json:"error"`
}

func (g *FunctionGateway) CreateCheckoutSession(ctx context.Context, bearer string, req CheckoutRequest) (*CheckoutSession, error) {
	body := functionCheckoutRequest{
		LineItems:     make([]functionLineItem, 0, len(req.LineItems)),
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      req.Metadata,
	}
	for _, item := range req.LineItems {
		product := functionProductData{Name: item.Name, Description: item.Description}
		if item.ImageURL != "" {
			product.Images = []string{item.ImageURL}
		}
		body.LineItems = append(body.LineItems, functionLineItem{
			PriceData: functionPriceData{
				Currency:    item.Currency,
				ProductData: product,
				UnitAmount:  item.UnitAmount,
			},
			Quantity: item.Quantity,
		})
	}

	var out functionCheckoutResponse
	if err := g.post(ctx, checkoutSessionPath, bearer, body, &out, checkoutSessionFallback); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, rejected("", checkoutSessionFallback)
	}
	id := out.ID
	if id == "" {
		id = out.SessionID
	}
	return &CheckoutSession{ID: id, URL: out.URL}, nil
}

func (g *FunctionGateway) CreatePriceCheckout(ctx context.Context, bearer string, req PriceCheckoutRequest) (*CheckoutSession, error) {
	body := functionPriceCheckoutRequest{
		PriceID:       req.PriceID,
		Mode:          req.Mode,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      req.Metadata,
	}
	var out functionCheckoutResponse
	if err := g.post(ctx, priceCheckoutPath, bearer, body, &out, checkoutSessionFallback); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, rejected("", checkoutSessionFallback)
	}
	id := out.ID
	if id == "" {
		id = out.SessionID
	}
	return &CheckoutSession{ID: id, URL: out.URL}, nil
}

func (g *FunctionGateway) CreatePaymentIntent(ctx context.Context, bearer string, req PaymentIntentRequest) (*PaymentIntent, error) {
	body := functionPaymentIntentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Items:    req.Items,
		Shipping: req.Shipping,
		UserID:   req.UserID,
	}
	var out functionPaymentIntentResponse
	if err := g.post(ctx, paymentIntentPath, bearer, body, &out, paymentIntentFallback); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ClientSecret) == "" {
		return nil, rejected("", paymentIntentFallback)
	}
	return &PaymentIntent{ID: out.PaymentIntentID, ClientSecret: out.ClientSecret}, nil
}

func (g *FunctionGateway) post(ctx context.Context, path, bearer string, body, out any, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return unreachable(err, path)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return unreachable(err, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr functionErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return rejected(apiErr.Error, fallback)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return rejected("", fallback)
	}
	return nil
}
