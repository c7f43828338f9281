package bot

import (
	"context"
	"strconv"

	"nailstudio-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramDispatcher delivers notifications as Telegram messages.
type TelegramDispatcher struct {
	api Sender
}

func NewTelegramDispatcher(api Sender) *TelegramDispatcher {
	return &TelegramDispatcher{api: api}
}

func (d *TelegramDispatcher) Dispatch(ctx context.Context, n services.Notification) (services.Receipt, error) {
	if n.To.TelegramID == 0 {
		return services.Receipt{}, &services.DeliveryError{Channel: services.ChannelTelegram, To: n.To, Err: services.ErrNoRoute}
	}
	if err := ctx.Err(); err != nil {
		return services.Receipt{}, &services.DeliveryError{Channel: services.ChannelTelegram, To: n.To, Err: err}
	}

	// broadcasts carry the administrator's raw text
	parseMode := tgbotapi.ModeHTML
	if n.Kind == services.KindBroadcast {
		parseMode = ""
	}

	var c tgbotapi.Chattable
	if n.PhotoRef != "" {
		photo := tgbotapi.NewPhoto(n.To.TelegramID, tgbotapi.FileID(n.PhotoRef))
		photo.Caption = n.Text
		photo.ParseMode = parseMode
		c = photo
	} else {
		msg := tgbotapi.NewMessage(n.To.TelegramID, n.Text)
		msg.ParseMode = parseMode
		if n.Kind == services.KindNewAppointment {
			msg.ReplyMarkup = decisionKeyboard(n.AppointmentID)
		}
		c = msg
	}

	sent, err := d.api.Send(c)
	if err != nil {
		return services.Receipt{}, &services.DeliveryError{Channel: services.ChannelTelegram, To: n.To, Err: err}
	}
	return services.Receipt{Channel: services.ChannelTelegram, MessageID: strconv.Itoa(sent.MessageID)}, nil
}
