package bot

import (
	"context"
	"errors"
	"fmt"

	"nailstudio-bot/models"
	"nailstudio-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleAdminAction(ctx context.Context, chatID int64, user *models.User, action Action) {
	if !h.svc.Admin.IsAdmin(user.TelegramID) {
		h.send(chatID, textAccessDenied, nil)
		return
	}

	switch action {
	case ActionAdminStats:
		stats, err := h.svc.Admin.Stats(ctx)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, statsText(stats), adminMenuKeyboard())

	case ActionAdminPending:
		pending, err := h.svc.Appointments.Pending(ctx)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		if len(pending) == 0 {
			h.send(chatID, textNoPending, adminMenuKeyboard())
			return
		}
		for i := range pending {
			a := &pending[i]
			h.send(chatID, services.NewAppointmentAdminText(clientOf(a), a), decisionKeyboard(a.ID))
		}

	case ActionAdminAll:
		recent, err := h.svc.Appointments.Recent(ctx, recentAdminListLimit)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, appointmentsText(fmt.Sprintf("📅 Последние %d записей", recentAdminListLimit), recent), adminMenuKeyboard())

	case ActionAdminAddPhoto:
		if err := h.svc.Admin.BeginFlow(user.TelegramID, services.FlowGalleryUpload); err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, textPhotoPrompt, adminCancelFlowKeyboard())

	case ActionAdminBroadcast:
		if err := h.svc.Admin.BeginFlow(user.TelegramID, services.FlowBroadcast); err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, textBroadcastPrompt, adminCancelFlowKeyboard())

	case ActionAdminCancelFlow:
		h.svc.Admin.EndFlow(user.TelegramID)
		h.send(chatID, textCancelled, adminMenuKeyboard())
	}
}

// decide applies an administrator's decision and updates the notification in place.
func (h *Handler) decide(ctx context.Context, chatID int64, messageID int, user *models.User, in Input) {
	var (
		a   *models.Appointment
		err error
	)
	switch in.Action {
	case ActionApprove:
		a, err = h.svc.Appointments.Approve(ctx, user.TelegramID, in.ID)
	case ActionReject:
		a, err = h.svc.Appointments.Reject(ctx, user.TelegramID, in.ID, "")
	case ActionComplete:
		a, err = h.svc.Appointments.Complete(ctx, user.TelegramID, in.ID)
	case ActionNoShow:
		a, err = h.svc.Appointments.MarkNoShow(ctx, user.TelegramID, in.ID)
	}
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	text := services.NewAppointmentAdminText(clientOf(a), a) + "\n\n<b>Статус:</b> " + statusLabels[a.Status]
	var markup *tgbotapi.InlineKeyboardMarkup
	if a.Status == models.StatusConfirmed {
		markup = ptr(visitKeyboard(a.ID))
	}
	h.edit(chatID, messageID, text, markup)
}

func (h *Handler) broadcast(ctx context.Context, chatID int64, user *models.User, text, photoRef string) {
	message, err := h.svc.Admin.Broadcast(ctx, user.TelegramID, text, photoRef)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			h.send(chatID, textBroadcastPrompt, adminCancelFlowKeyboard())
			return
		}
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, broadcastDoneText(message), adminMenuKeyboard())
}

func (h *Handler) addGalleryImage(ctx context.Context, chatID int64, user *models.User, fileID, caption string) {
	image, err := h.svc.Gallery.AddImage(ctx, user.TelegramID, fileID, caption)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			h.send(chatID, textPhotoBadCategory, adminCancelFlowKeyboard())
			return
		}
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Фото добавлено в галерею: %s", image.Category), adminCancelFlowKeyboard())
}

func clientOf(a *models.Appointment) *models.User {
	if a.User != nil {
		return a.User
	}
	return &models.User{}
}
