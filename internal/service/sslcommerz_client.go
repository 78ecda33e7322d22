package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/rs/zerolog/log"
)

// SSLCommerzSessionRequest carries everything the hosted checkout needs.
type SSLCommerzSessionRequest struct {
	TotalAmount   int
	Currency      string
	TranID        string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string
	CustomerName  string
	CustomerEmail string
	ProductName   string
	UserRef       string
}

type SSLCommerzSessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// SSLCommerzValidation is the gateway's authoritative word on a
// transaction; notifications are never trusted without it.
type SSLCommerzValidation struct {
	Status   string `json:"status"`
	TranID   string `json:"tran_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (v *SSLCommerzValidation) Valid() bool {
	return v.Status == "VALID" || v.Status == "VALIDATED"
}

type SSLCommerzClient interface {
	CreateSession(ctx context.Context, req SSLCommerzSessionRequest) (*SSLCommerzSessionResponse, error)
	ValidateTransaction(ctx context.Context, valID string) (*SSLCommerzValidation, error)
}

type sslCommerzClient struct {
	baseURL       string
	storeID       string
	storePassword string
	httpClient    *http.Client
}

func NewSSLCommerzClient(cfg *config.Config) SSLCommerzClient {
	return &sslCommerzClient{
		baseURL:       cfg.SSLCommerz.BaseURL,
		storeID:       cfg.SSLCommerz.StoreID,
		storePassword: cfg.SSLCommerz.StorePassword,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *sslCommerzClient) CreateSession(ctx context.Context, req SSLCommerzSessionRequest) (*SSLCommerzSessionResponse, error) {
	form := url.Values{
		"store_id":         {c.storeID},
		"store_passwd":     {c.storePassword},
		"total_amount":     {fmt.Sprintf("%d", req.TotalAmount)},
		"currency":         {req.Currency},
		"tran_id":          {req.TranID},
		"success_url":      {req.SuccessURL},
		"fail_url":         {req.FailURL},
		"cancel_url":       {req.CancelURL},
		"ipn_url":          {req.IPNURL},
		"cus_name":         {req.CustomerName},
		"cus_email":        {req.CustomerEmail},
		"cus_add1":         {"N/A"},
		"cus_city":         {"N/A"},
		"cus_postcode":     {"0000"},
		"cus_country":      {"Bangladesh"},
		"cus_phone":        {"01700000000"},
		"product_name":     {req.ProductName},
		"product_category": {"topup"},
		"product_profile":  {"non-physical-goods"},
		"shipping_method":  {"NO"},
		"num_of_item":      {"1"},
		"value_a":          {req.UserRef},
		"value_b":          {req.TranID},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperror.Upstreamf("sslcommerz session request failed: %s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstreamf("sslcommerz session response read failed: %s", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("SSLCommerz session creation returned non-200")
		return nil, apperror.Upstreamf("sslcommerz returned status %d", resp.StatusCode)
	}

	var session SSLCommerzSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, apperror.Upstreamf("sslcommerz session response malformed: %s", err.Error())
	}
	return &session, nil
}

func (c *sslCommerzClient) ValidateTransaction(ctx context.Context, valID string) (*SSLCommerzValidation, error) {
	query := url.Values{
		"val_id":       {valID},
		"store_id":     {c.storeID},
		"store_passwd": {c.storePassword},
		"format":       {"json"},
	}
	validateURL := c.baseURL + "/validator/api/validationserverAPI.php?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validateURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstreamf("sslcommerz validation request failed: %s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstreamf("sslcommerz validation response read failed: %s", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("SSLCommerz validation returned non-200")
		return nil, apperror.Upstreamf("sslcommerz validator returned status %d", resp.StatusCode)
	}

	var validation SSLCommerzValidation
	if err := json.Unmarshal(body, &validation); err != nil {
		return nil, apperror.Upstreamf("sslcommerz validation response malformed: %s", err.Error())
	}
	return &validation, nil
}
