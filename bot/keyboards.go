package bot

import (
	"fmt"
	"strings"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/services"
	"nailstudio-bot/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuServices), tgbotapi.NewKeyboardButton(menuGallery)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuBook), tgbotapi.NewKeyboardButton(menuProfile)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuReviews), tgbotapi.NewKeyboardButton(menuContacts)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuAbout), tgbotapi.NewKeyboardButton(menuPromotions)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func shareContactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("📱 Поделиться контактом")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuCancel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func servicesKeyboard(catalog config.Catalog) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range catalog.Services {
		label := fmt.Sprintf("%s %s - %s", s.Emoji, s.Name, utils.FormatRub(s.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbService+s.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", cbMainMenu)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func datesKeyboard(dates []time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range dates {
		label := utils.FormatDay(d)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			label = "🎉 " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbDate+utils.FormatDate(d)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад к услугам", cbBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func slotsKeyboard(slots []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(slots); i += 3 {
		end := i + 3
		if end > len(slots) {
			end = len(slots)
		}
		var row []tgbotapi.InlineKeyboardButton
		for _, slot := range slots[i:end] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(slot, cbTime+slot))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Выбрать другую дату", cbBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Да, всё верно!", cbConfirmBooking)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎁 Применить скидку", cbApplyDiscount)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", cbBack),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", cbCancelBooking),
		),
	)
}

func offersKeyboard(offers []services.DiscountOffer) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range offers {
		label := fmt.Sprintf("🎁 %s (%d%%)", services.DiscountLabel(o), o.Percent)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbUseDiscount+o.Key)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚫 Без скидки", cbNoDiscount)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", cbBack)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func bookAgainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(menuBook, cbBookNow)),
	)
}

func galleryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💅 Маникюр", cbGallery+"manicure"),
			tgbotapi.NewInlineKeyboardButtonData("👣 Педикюр", cbGallery+"pedicure"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌟 Комбо", cbGallery+"combo"),
			tgbotapi.NewInlineKeyboardButtonData("🎨 Все работы", cbGallery+"all"),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎲 Случайная работа", cbGallery+"random")),
	)
}

func contactsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📍 Как добраться?", cbGetLocation)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Задать вопрос", cbWriteToAdmin)),
	)
}

func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Мои записи", cbMyAppointments),
			tgbotapi.NewInlineKeyboardButtonData("🎁 Мои скидки", cbMyDiscounts),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎫 Пригласить подругу", cbInviteFriend)),
	)
}

// myAppointmentsKeyboard offers cancellation for every appointment still cancellable.
func myAppointmentsKeyboard(appointments []models.Appointment) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range appointments {
		if !a.Cancellable() {
			continue
		}
		label := fmt.Sprintf("❌ Отменить %s %s", utils.FormatDate(a.Date), a.Time)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbCancelMine+a.ID.String())))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func reviewsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⭐ Оставить отзыв", cbLeaveReview)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📖 Читать отзывы", cbReadReviews)),
	)
}

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	var first, second []tgbotapi.InlineKeyboardButton
	for i := 1; i <= 5; i++ {
		b := tgbotapi.NewInlineKeyboardButtonData(strings.Repeat("⭐", i), fmt.Sprintf("%s%d", cbRate, i))
		if i <= 3 {
			first = append(first, b)
		} else {
			second = append(second, b)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(first, second,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancelReview)),
	)
}

func skipPhotoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➡️ Без фото", cbSkipPhoto)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancelReview)),
	)
}

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", cbAdminStats),
			tgbotapi.NewInlineKeyboardButtonData("📝 Заявки на рассмотрении", cbAdminPending),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Все записи", cbAdminAll),
			tgbotapi.NewInlineKeyboardButtonData("🖼️ Добавить фото", cbAdminAddPhoto),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📢 Рассылка", cbAdminBroadcast)),
	)
}

func adminCancelFlowKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancelAdminFlow)),
	)
}

// decisionKeyboard is attached to new appointment notifications for administrators.
func decisionKeyboard(id uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", cbApprove+id.String()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", cbReject+id.String()),
		),
	)
}

// visitKeyboard closes a confirmed visit.
func visitKeyboard(id uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Визит состоялся", cbComplete+id.String()),
			tgbotapi.NewInlineKeyboardButtonData("🙈 Не пришла", cbNoShow+id.String()),
		),
	)
}
