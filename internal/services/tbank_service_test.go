package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/seatours/boat-booking-backend/internal/config"
)

func newTestTBankService(password string) *TBankService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewTBankService(config.TBankConfig{
		TerminalKey: "t",
		Password:    password,
		APIURL:      "https://securepay.tinkoff.ru/v2",
	}, logger)
}

func TestGenerateToken(t *testing.T) {
	service := newTestTBankService("pwd")

	t.Run("KnownVector", func(t *testing.T) {
		// Sorted keys: Amount, OrderId, Password, TerminalKey
		// Concatenated: "1001pwdt"
		token := service.GenerateToken(map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "1",
			"Amount":      100,
		})
		assert.Equal(t, "f24a97ae30f534a044aa561b33ac2530c00256243d6bcd6d809d957e4472103a", token)
	})

	t.Run("ExcludesTokenDataAndReceipt", func(t *testing.T) {
		base := map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "1",
			"Amount":      100,
		}
		withExcluded := map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "1",
			"Amount":      100,
			"Token":       "whatever",
			"DATA":        map[string]interface{}{"Email": "a@b.c"},
			"Receipt":     map[string]interface{}{"Taxation": "usn"},
		}
		assert.Equal(t, service.GenerateToken(base), service.GenerateToken(withExcluded))
	})

	t.Run("Deterministic", func(t *testing.T) {
		payload := map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "abc",
			"Amount":      float64(500000),
			"Success":     true,
		}
		assert.Equal(t, service.GenerateToken(payload), service.GenerateToken(payload))
	})

	t.Run("JSONNumbersRenderWithoutDecimalPoint", func(t *testing.T) {
		// Webhook payloads decode Amount as float64; the signature must
		// match the one computed over the original integer
		asInt := service.GenerateToken(map[string]interface{}{"TerminalKey": "t", "Amount": 500000})
		asFloat := service.GenerateToken(map[string]interface{}{"TerminalKey": "t", "Amount": float64(500000)})
		assert.Equal(t, asInt, asFloat)
	})
}

func TestVerifyNotification(t *testing.T) {
	service := newTestTBankService("secret")

	sign := func(payload map[string]interface{}) map[string]interface{} {
		payload["Token"] = service.GenerateToken(payload)
		return payload
	}

	t.Run("AcceptsValidSignature", func(t *testing.T) {
		payload := sign(map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "boat-123",
			"PaymentId":   float64(4242),
			"Status":      "CONFIRMED",
			"Success":     true,
			"Amount":      float64(500000),
		})
		assert.True(t, service.VerifyNotification(payload))
	})

	t.Run("RejectsTamperedAmount", func(t *testing.T) {
		payload := sign(map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "boat-123",
			"Status":      "CONFIRMED",
			"Amount":      float64(500000),
		})
		payload["Amount"] = float64(1)
		assert.False(t, service.VerifyNotification(payload))
	})

	t.Run("RejectsMissingToken", func(t *testing.T) {
		assert.False(t, service.VerifyNotification(map[string]interface{}{
			"TerminalKey": "t",
			"Status":      "CONFIRMED",
		}))
	})

	t.Run("RejectsWrongPassword", func(t *testing.T) {
		other := newTestTBankService("different")
		payload := map[string]interface{}{
			"TerminalKey": "t",
			"OrderId":     "boat-123",
			"Status":      "CONFIRMED",
		}
		payload["Token"] = other.GenerateToken(payload)
		assert.False(t, service.VerifyNotification(payload))
	})
}

func TestKopecks(t *testing.T) {
	assert.Equal(t, int64(500000), Kopecks(5000))
	assert.Equal(t, int64(123456), Kopecks(1234.56))
	// Float noise must not shave a kopeck off
	assert.Equal(t, int64(1999), Kopecks(19.99))
}
