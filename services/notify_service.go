// services/notify_service.go
package services

import (
	"os"
	"strings"
	"time"

	"meeting-backend/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier posts booking status events to an external webhook. Delivery is
// fire-and-forget: failures are logged and never affect the booking
// transition. The webhook URL comes from NOTIFY_WEBHOOK_URL; when unset the
// notifier is a no-op.
type Notifier struct {
	client     *resty.Client
	webhookURL string
	logger     *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{
		client:     resty.New().SetTimeout(5 * time.Second),
		webhookURL: strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")),
		logger:     logger,
	}
}

type bookingEvent struct {
	Event     string    `json:"event"`
	BookingID uint      `json:"booking_id"`
	Title     string    `json:"title"`
	Room      string    `json:"room"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	User      string    `json:"user"`
}

// BookingStatusChanged dispatches the event in a goroutine.
func (n *Notifier) BookingStatusChanged(booking models.Booking) {
	if n.webhookURL == "" {
		return
	}

	event := bookingEvent{
		Event:     "booking_status_changed",
		BookingID: booking.ID,
		Title:     booking.Title,
		Room:      booking.Room.Name,
		Status:    booking.Status,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		User:      booking.User.FullName,
	}

	go func() {
		resp, err := n.client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(event).
			Post(n.webhookURL)
		if err != nil {
			n.logger.Warn("notification webhook failed",
				zap.Uint("booking_id", event.BookingID),
				zap.Error(err))
			return
		}
		if resp.IsError() {
			n.logger.Warn("notification webhook rejected",
				zap.Uint("booking_id", event.BookingID),
				zap.Int("status", resp.StatusCode()))
		}
	}()
}
