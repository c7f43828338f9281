package bot

import (
	"context"
	"errors"
	"testing"

	"nailstudio-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, f.err
}

func TestTelegramDispatcherNewAppointment(t *testing.T) {
	sender := &fakeSender{}
	d := NewTelegramDispatcher(sender)
	id := uuid.New()

	receipt, err := d.Dispatch(context.Background(), services.Notification{
		Kind:          services.KindNewAppointment,
		To:            services.Recipient{TelegramID: 1000},
		Text:          "<b>Новая запись!</b>",
		AppointmentID: id,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if receipt.Channel != services.ChannelTelegram || receipt.MessageID != "1" {
		t.Errorf("receipt = %+v", receipt)
	}

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want a message", sender.sent[0])
	}
	if msg.ChatID != 1000 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("message to %d in mode %q", msg.ChatID, msg.ParseMode)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || *kb.InlineKeyboard[0][0].CallbackData != cbApprove+id.String() {
		t.Errorf("reply markup = %+v, want approve/reject buttons", msg.ReplyMarkup)
	}
}

func TestTelegramDispatcherBroadcastPhoto(t *testing.T) {
	sender := &fakeSender{}
	d := NewTelegramDispatcher(sender)

	_, err := d.Dispatch(context.Background(), services.Notification{
		Kind:     services.KindBroadcast,
		To:       services.Recipient{TelegramID: 42},
		Text:     "Скидки <3",
		PhotoRef: "AgACAgIAAxkBAAI",
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("sent %T, want a photo", sender.sent[0])
	}
	if photo.Caption != "Скидки <3" || photo.ParseMode != "" {
		t.Errorf("photo caption %q mode %q, want raw text", photo.Caption, photo.ParseMode)
	}
}

func TestTelegramDispatcherFailures(t *testing.T) {
	d := NewTelegramDispatcher(&fakeSender{})
	if _, err := d.Dispatch(context.Background(), services.Notification{Text: "hi"}); !errors.Is(err, services.ErrNoRoute) {
		t.Errorf("Dispatch() without chat error = %v, want ErrNoRoute", err)
	}

	blocked := errors.New("Forbidden: bot was blocked by the user")
	d = NewTelegramDispatcher(&fakeSender{err: blocked})
	_, err := d.Dispatch(context.Background(), services.Notification{To: services.Recipient{TelegramID: 42}, Text: "hi"})
	var delivery *services.DeliveryError
	if !errors.As(err, &delivery) || !errors.Is(err, blocked) {
		t.Errorf("Dispatch() error = %v, want a DeliveryError wrapping the send failure", err)
	}
}
