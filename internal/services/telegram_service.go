package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// TelegramService delivers booking notifications through a Telegram bot
type TelegramService struct {
	cfg    config.TelegramConfig
	client *http.Client
	logger *logrus.Logger
}

// NewTelegramService creates a new telegram service
func NewTelegramService(cfg config.TelegramConfig, logger *logrus.Logger) *TelegramService {
	return &TelegramService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// IsConfigured reports whether the bot token is set
func (s *TelegramService) IsConfigured() bool {
	return s.cfg.BotToken != ""
}

// SendToChannel posts a message to the operator channel
func (s *TelegramService) SendToChannel(text string) error {
	if s.cfg.ChannelID == "" {
		return nil
	}
	return s.send(s.cfg.ChannelID, text)
}

// SendToUser delivers a direct message to a user's chat
func (s *TelegramService) SendToUser(chatID int64, text string) error {
	return s.send(strconv.FormatInt(chatID, 10), text)
}

// NotifyRecipients messages each distinct recipient once. Users showing
// up in several roles on the same booking (a guide booking for their
// own stay, for example) get a single message.
func (s *TelegramService) NotifyRecipients(recipients []*models.User, text string) {
	seen := map[string]bool{}
	for _, user := range recipients {
		if user == nil || user.TelegramChatID == nil {
			continue
		}
		if seen[user.ID.String()] {
			continue
		}
		seen[user.ID.String()] = true

		if err := s.SendToUser(*user.TelegramChatID, text); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to send telegram message")
		}
	}
}

// FormatBookingCreated renders the operator channel message for a new booking
func FormatBookingCreated(booking *models.Booking, boatName string) string {
	return fmt.Sprintf(
		"🛥 <b>New booking</b>\nBoat: %s\nDeparture: %s\nGuests: %d\nName: %s\nPhone: %s\nTotal: %.0f ₽ (deposit %.0f ₽)",
		boatName,
		booking.StartDatetime.Format("02.01.2006 15:04"),
		booking.HeadCount,
		booking.GuestName,
		booking.GuestPhone,
		booking.TotalPrice,
		booking.Deposit,
	)
}

// FormatDepositPaid renders the message sent when the deposit settles
func FormatDepositPaid(booking *models.Booking, boatName string) string {
	return fmt.Sprintf(
		"💰 <b>Deposit received</b>\nBoat: %s\nDeparture: %s\nGuests: %d\nName: %s\nRemaining: %.0f ₽",
		boatName,
		booking.StartDatetime.Format("02.01.2006 15:04"),
		booking.HeadCount,
		booking.GuestName,
		booking.RemainingAmount,
	)
}

// FormatFullyPaid renders the message sent when the booking is paid in full
func FormatFullyPaid(booking *models.Booking, boatName string) string {
	return fmt.Sprintf(
		"✅ <b>Booking fully paid</b>\nBoat: %s\nDeparture: %s\nGuests: %d\nName: %s\nTotal: %.0f ₽",
		boatName,
		booking.StartDatetime.Format("02.01.2006 15:04"),
		booking.HeadCount,
		booking.GuestName,
		booking.TotalPrice,
	)
}

// FormatGuideReminder renders the pre-departure reminder for a guide
func FormatGuideReminder(booking *models.Booking, boatName string) string {
	return fmt.Sprintf(
		"⏰ <b>Trip tomorrow</b>\nBoat: %s\nDeparture: %s\nGuests: %d\nName: %s",
		boatName,
		booking.StartDatetime.Format("02.01.2006 15:04"),
		booking.HeadCount,
		booking.GuestName,
	)
}

func (s *TelegramService) send(chatID, text string) error {
	if !s.IsConfigured() {
		s.logger.Debug("Telegram bot not configured, skipping message")
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.cfg.BotToken)
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to call telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
