package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// TBankService talks to the T-Bank acquiring API
type TBankService struct {
	cfg    config.TBankConfig
	client *http.Client
	logger *logrus.Logger
}

// NewTBankService creates a new gateway client
func NewTBankService(cfg config.TBankConfig, logger *logrus.Logger) *TBankService {
	return &TBankService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// IsConfigured reports whether gateway credentials are present
func (s *TBankService) IsConfigured() bool {
	return s.cfg.TerminalKey != "" && s.cfg.Password != ""
}

// InitResult is the outcome of an Init call
type InitResult struct {
	PaymentID  string
	PaymentURL string
	Status     models.PaymentStatus
}

// Kopecks converts a ruble amount to the integer kopecks the gateway
// expects. Conversion happens only at this boundary; everything else
// in the system works in rubles.
func Kopecks(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// InitPayment registers a payment with the gateway and returns the
// hosted payment form URL
func (s *TBankService) InitPayment(orderID string, amount float64, description, email, phone string) (*InitResult, error) {
	request := map[string]interface{}{
		"TerminalKey": s.cfg.TerminalKey,
		"Amount":      Kopecks(amount),
		"OrderId":     orderID,
		"Description": description,
	}
	if s.cfg.NotificationURL != "" {
		request["NotificationURL"] = s.cfg.NotificationURL
	}
	if s.cfg.SuccessURL != "" {
		request["SuccessURL"] = s.cfg.SuccessURL
	}
	if s.cfg.FailURL != "" {
		request["FailURL"] = s.cfg.FailURL
	}
	request["Token"] = s.GenerateToken(request)

	if email != "" || phone != "" {
		data := map[string]interface{}{}
		if email != "" {
			data["Email"] = email
		}
		if phone != "" {
			data["Phone"] = phone
		}
		request["DATA"] = data
	}

	var response struct {
		Success    bool   `json:"Success"`
		Status     string `json:"Status"`
		PaymentID  string `json:"PaymentId"`
		PaymentURL string `json:"PaymentURL"`
		ErrorCode  string `json:"ErrorCode"`
		Message    string `json:"Message"`
		Details    string `json:"Details"`
	}
	if err := s.post("/Init", request, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &models.GatewayError{Operation: "Init", Code: response.ErrorCode, Message: response.Message}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   orderID,
		"payment_id": response.PaymentID,
		"amount":     amount,
	}).Info("Payment initialized")

	return &InitResult{
		PaymentID:  response.PaymentID,
		PaymentURL: response.PaymentURL,
		Status:     models.PaymentStatus(response.Status),
	}, nil
}

// GetState polls the gateway for the current payment status
func (s *TBankService) GetState(paymentID string) (models.PaymentStatus, error) {
	request := map[string]interface{}{
		"TerminalKey": s.cfg.TerminalKey,
		"PaymentId":   paymentID,
	}
	request["Token"] = s.GenerateToken(request)

	var response struct {
		Success   bool   `json:"Success"`
		Status    string `json:"Status"`
		ErrorCode string `json:"ErrorCode"`
		Message   string `json:"Message"`
	}
	if err := s.post("/GetState", request, &response); err != nil {
		return "", err
	}
	if !response.Success {
		return "", &models.GatewayError{Operation: "GetState", Code: response.ErrorCode, Message: response.Message}
	}
	return models.PaymentStatus(response.Status), nil
}

// ConfirmPayment captures a two-stage payment stuck in AUTHORIZED
func (s *TBankService) ConfirmPayment(paymentID string) (models.PaymentStatus, error) {
	request := map[string]interface{}{
		"TerminalKey": s.cfg.TerminalKey,
		"PaymentId":   paymentID,
	}
	request["Token"] = s.GenerateToken(request)

	var response struct {
		Success   bool   `json:"Success"`
		Status    string `json:"Status"`
		ErrorCode string `json:"ErrorCode"`
		Message   string `json:"Message"`
	}
	if err := s.post("/Confirm", request, &response); err != nil {
		return "", err
	}
	if !response.Success {
		return "", &models.GatewayError{Operation: "Confirm", Code: response.ErrorCode, Message: response.Message}
	}
	return models.PaymentStatus(response.Status), nil
}

// CancelPayment reverses or refunds a payment at the gateway
func (s *TBankService) CancelPayment(paymentID string, amount float64) (models.PaymentStatus, error) {
	request := map[string]interface{}{
		"TerminalKey": s.cfg.TerminalKey,
		"PaymentId":   paymentID,
	}
	if amount > 0 {
		request["Amount"] = Kopecks(amount)
	}
	request["Token"] = s.GenerateToken(request)

	var response struct {
		Success   bool   `json:"Success"`
		Status    string `json:"Status"`
		ErrorCode string `json:"ErrorCode"`
		Message   string `json:"Message"`
	}
	if err := s.post("/Cancel", request, &response); err != nil {
		return "", err
	}
	if !response.Success {
		return "", &models.GatewayError{Operation: "Cancel", Code: response.ErrorCode, Message: response.Message}
	}
	return models.PaymentStatus(response.Status), nil
}

// GenerateToken computes the request signature: all scalar fields plus
// the terminal password, sorted by key, values concatenated, SHA-256
// over the result. Token, DATA and Receipt never participate.
func (s *TBankService) GenerateToken(request map[string]interface{}) string {
	values := map[string]string{"Password": s.cfg.Password}
	for key, value := range request {
		switch key {
		case "Token", "DATA", "Receipt", "Shops":
			continue
		}
		values[key] = tokenValue(value)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		buf.WriteString(values[key])
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// VerifyNotification checks the signature of a gateway webhook payload
func (s *TBankService) VerifyNotification(payload map[string]interface{}) bool {
	received, ok := payload["Token"].(string)
	if !ok || received == "" {
		return false
	}
	return s.GenerateToken(payload) == received
}

func tokenValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		// JSON numbers arrive as float64; amounts are integral kopecks
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *TBankService) post(path string, request map[string]interface{}, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	resp, err := s.client.Post(s.cfg.APIURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to call gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.GatewayError{Operation: path, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
