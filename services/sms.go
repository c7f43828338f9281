package services

import (
	"context"
	"strings"

	"nailstudio-bot/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioDispatcher delivers client notifications by WhatsApp or SMS. It is used as a
// fallback after Telegram, for reminders and status updates only.
type TwilioDispatcher struct {
	api            messageCreator
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioDispatcher(cfg config.TwilioConfig) *TwilioDispatcher {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioDispatcher{
		api:            client.Api,
		phoneNumber:    cfg.PhoneNumber,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

func (d *TwilioDispatcher) Dispatch(ctx context.Context, n Notification) (Receipt, error) {
	if n.Kind != KindReminder && n.Kind != KindText {
		return Receipt{}, &DeliveryError{Channel: ChannelSMS, To: n.To, Err: ErrNoRoute}
	}
	if n.To.Phone == "" {
		return Receipt{}, &DeliveryError{Channel: ChannelSMS, To: n.To, Err: ErrNoRoute}
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, &DeliveryError{Channel: ChannelSMS, To: n.To, Err: err}
	}

	// Use WhatsApp if phone is in E.164 format and a WhatsApp sender is configured
	channel := ChannelSMS
	to, from := n.To.Phone, d.phoneNumber
	if strings.HasPrefix(n.To.Phone, "+") && d.whatsAppNumber != "" {
		channel = ChannelWhatsApp
		to, from = "whatsapp:"+n.To.Phone, "whatsapp:"+d.whatsAppNumber
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(plainText(n.Text))

	resp, err := d.api.CreateMessage(params)
	if err != nil {
		return Receipt{}, &DeliveryError{Channel: channel, To: n.To, Err: err}
	}
	receipt := Receipt{Channel: channel}
	if resp != nil && resp.Sid != nil {
		receipt.MessageID = *resp.Sid
	}
	return receipt, nil
}

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "", "<code>", "", "</code>", "",
	"&lt;", "<", "&gt;", ">", "&amp;", "&", "&#34;", `"`, "&#39;", "'")

// plainText drops the HTML markup used for Telegram messages.
func plainText(s string) string {
	return htmlTags.Replace(s)
}
