package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Run long-polls Telegram and handles updates one at a time until ctx is cancelled.
func Run(ctx context.Context, api *tgbotapi.BotAPI, h *Handler, timeout int, log *zap.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := api.GetUpdatesChan(u)
	log.Info("Bot is running", zap.String("username", api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}
