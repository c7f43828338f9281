package services

import (
	"fmt"
	"html"
	"strings"

	"nailstudio-bot/models"
	"nailstudio-bot/utils"
)

// Texts sent by services to users and administrators. They are HTML formatted.

func NewAppointmentAdminText(user *models.User, a *models.Appointment) string {
	var b strings.Builder
	b.WriteString("🆕 <b>Новая запись!</b>\n\n")
	fmt.Fprintf(&b, "👤 Клиент: %s\n", html.EscapeString(user.DisplayName()))
	if user.Username != "" {
		fmt.Fprintf(&b, "🔗 @%s\n", html.EscapeString(user.Username))
	}
	fmt.Fprintf(&b, "📱 Телефон: %s\n", html.EscapeString(user.Phone))
	fmt.Fprintf(&b, "💅 Услуга: %s\n", html.EscapeString(a.ServiceName))
	fmt.Fprintf(&b, "📅 Дата: %s\n", utils.FormatDate(a.Date))
	fmt.Fprintf(&b, "⏰ Время: %s\n", a.Time)
	if a.DiscountPercent > 0 {
		fmt.Fprintf(&b, "🎁 Скидка: %d%%\n", a.DiscountPercent)
	}
	fmt.Fprintf(&b, "💰 Стоимость: %s", utils.FormatRub(a.FinalPrice))
	return b.String()
}

func AppointmentConfirmedText(a *models.Appointment) string {
	return fmt.Sprintf(
		"✅ <b>Ваша запись подтверждена!</b>\n\n💅 %s\n📅 %s в %s\n💰 %s\n\nЖдём вас!",
		html.EscapeString(a.ServiceName), utils.FormatDate(a.Date), a.Time, utils.FormatRub(a.FinalPrice),
	)
}

func AppointmentRejectedText(a *models.Appointment) string {
	text := fmt.Sprintf(
		"❌ <b>К сожалению, запись на %s в %s отклонена.</b>\n\nВыберите, пожалуйста, другое время.",
		utils.FormatDate(a.Date), a.Time,
	)
	if a.AdminComment != "" {
		text += "\n\nКомментарий: " + html.EscapeString(a.AdminComment)
	}
	return text
}

func AppointmentCancelledAdminText(user *models.User, a *models.Appointment) string {
	return fmt.Sprintf(
		"🚫 <b>Клиент отменил запись</b>\n\n👤 %s\n💅 %s\n📅 %s в %s",
		html.EscapeString(user.DisplayName()), html.EscapeString(a.ServiceName), utils.FormatDate(a.Date), a.Time,
	)
}

func ReminderText(kind string, a *models.Appointment) string {
	when := "завтра"
	if kind == models.Reminder3hBefore {
		when = "через 3 часа"
	}
	return fmt.Sprintf(
		"⏰ <b>Напоминание</b>\n\nВы записаны %s: %s, %s в %s.\n\nЕсли планы изменились, отмените запись в профиле.",
		when, html.EscapeString(a.ServiceName), utils.FormatDate(a.Date), a.Time,
	)
}

func MilestoneText(visits, percent int) string {
	return fmt.Sprintf("🎉 Поздравляем! Это ваш %d-й визит. Дарим скидку %d%% на следующую запись.", visits, percent)
}

func ReferralGrantedText(percent int) string {
	return fmt.Sprintf("🎁 По вашей ссылке пришла подруга! Вам начислена скидка %d%% на следующий визит.", percent)
}

func QuestionForwardText(user *models.User, question string) string {
	who := html.EscapeString(user.DisplayName())
	if user.Username != "" {
		who += " (@" + html.EscapeString(user.Username) + ")"
	}
	return fmt.Sprintf("❓ <b>Вопрос от клиента</b>\n\n👤 %s\nID: <code>%d</code>\n\n%s", who, user.TelegramID, html.EscapeString(question))
}
