package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

type NotificationKind int

const (
	KindText NotificationKind = iota
	// KindNewAppointment goes to administrators with approve/reject actions.
	KindNewAppointment
	KindReminder
	KindBroadcast
)

type Recipient struct {
	TelegramID int64
	Phone      string
}

type Notification struct {
	Kind          NotificationKind
	To            Recipient
	Text          string
	PhotoRef      string
	AppointmentID uuid.UUID
}

type Receipt struct {
	Channel   string
	MessageID string
}

// DeliveryError reports an outbound message that did not reach its recipient.
type DeliveryError struct {
	Channel string
	To      Recipient
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver via %s to %d: %v", e.Channel, e.To.TelegramID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ErrNoRoute is returned by a dispatcher that cannot address the recipient.
var ErrNoRoute = errors.New("recipient has no address for this channel")

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) (Receipt, error)
}

// FallbackDispatcher tries each channel in order and stops at the first delivery.
type FallbackDispatcher []Dispatcher

func (f FallbackDispatcher) Dispatch(ctx context.Context, n Notification) (Receipt, error) {
	var lastErr error
	for _, d := range f {
		receipt, err := d.Dispatch(ctx, n)
		if err == nil {
			return receipt, nil
		}
		// a real delivery failure is more useful to report than a missing address
		if lastErr == nil || !errors.Is(err, ErrNoRoute) {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = &DeliveryError{Channel: "none", To: n.To, Err: ErrNoRoute}
	}
	return Receipt{}, lastErr
}

// Notify sends n and logs a failed delivery. The error is returned for bookkeeping
// only; callers never abort their flow on it.
func Notify(ctx context.Context, log *zap.Logger, d Dispatcher, n Notification) (Receipt, error) {
	receipt, err := d.Dispatch(ctx, n)
	if err != nil {
		log.Warn("Notification not delivered",
			zap.Int64("telegram_id", n.To.TelegramID),
			zap.Int("kind", int(n.Kind)),
			zap.Error(err),
		)
	}
	return receipt, err
}
