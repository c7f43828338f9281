package bot

import (
	"fmt"
	"html"
	"strings"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/services"
	"nailstudio-bot/utils"
)

const (
	textAccessDenied     = "⛔ Доступ запрещен!"
	textGenericFailure   = "😔 Что-то пошло не так. Попробуйте, пожалуйста, позже."
	textNotFound         = "🤷 Запись не найдена."
	textAlreadyProcessed = "ℹ️ Эта заявка уже обработана."
	textOptionGone       = "Этот вариант недоступен, выберите другой."
	textSessionExpired   = "⌛ Сессия записи истекла, начнём заново.\n\n"
	textIncompleteDraft  = "📝 Заявка заполнена не полностью. Нажмите «Записаться» и пройдите шаги заново."
	textBookingCancelled = "❌ Запись отменена. Будем рады видеть вас в другой раз!"
	textDiscountGone     = "⚠️ Выбранная скидка больше недоступна. Проверьте стоимость и подтвердите запись."
	textInvalidPhone     = "📱 Не удалось распознать номер. Поделитесь контактом кнопкой ниже."
	textForeignContact   = "📱 Пожалуйста, отправьте свой собственный контакт."
	textUseMenu          = "Выберите действие в меню ниже 👇"
	textQuestionSent     = "💌 Спасибо! Ваш вопрос передан администраторам, мы скоро ответим."
	textAskQuestion      = "✏️ Напишите свой вопрос одним сообщением, и мы ответим в течение 15 минут."
	textCancelled        = "Действие отменено."
	textBirthdayUsage    = "🎂 Укажите дату рождения так: /birthday 15.03.1995"
	textBirthdaySaved    = "🎂 Дата рождения сохранена! В дни рядом с праздником вас будет ждать скидка."
	textRatePrompt       = "⭐ Оцените, пожалуйста, наш салон:"
	textReviewTextPrompt = "✍️ Расскажите, что вам понравилось:"
	textReviewPhoto      = "📷 Прикрепите фото работы или нажмите «Без фото»."
	textReviewThanks     = "💖 Спасибо за отзыв!"
	textNoReviews        = "Пока нет отзывов. Станьте первой!"
	textGalleryEmpty     = "🖼️ В этой категории пока нет работ."
	textAdminMenu        = "👑 <b>Панель администратора</b>"
	textNoPending        = "✅ Новых заявок нет."
	textNoAppointments   = "📭 Записей пока нет."
	textPhotoPrompt      = "🖼️ Отправьте фото с подписью категории: manicure, pedicure или combo."
	textPhotoBadCategory = "Подпись должна начинаться с категории: manicure, pedicure или combo."
	textBroadcastPrompt  = "📢 Отправьте текст рассылки (можно с фото)."
	textNoDiscounts      = "🎁 Активных скидок нет. Приглашайте подруг, чтобы получить скидку!"
)

func welcomeText(salon config.SalonInfo) string {
	return fmt.Sprintf(`✨ <b>Добро пожаловать в %s!</b> ✨

💅 Я помогу записаться на маникюр и педикюр.

🎨 <b>Что я умею:</b>
• Показать услуги и цены
• Записать вас на удобное время
• Показать галерею наших работ
• Передать вопрос администратору
• Рассказать об акциях

Выберите действие в меню ниже 👇`, html.EscapeString(salon.Name))
}

const helpText = `📖 <b>Помощь</b>

/start - главное меню
/birthday ДД.ММ.ГГГГ - указать дату рождения
/cancel - отменить текущее действие
/help - эта справка`

func servicesText(catalog config.Catalog) string {
	var b strings.Builder
	b.WriteString("<b>💅 Наши услуги и цены:</b>\n\n")
	for _, s := range catalog.Services {
		fmt.Fprintf(&b, "%s <b>%s</b> - %s (%d мин)\n", s.Emoji, html.EscapeString(s.Name), utils.FormatRub(s.Price), s.Duration)
		if s.Description != "" {
			fmt.Fprintf(&b, "   <i>%s</i>\n", html.EscapeString(s.Description))
		}
	}
	b.WriteString("\n👇 Выберите услугу:")
	return b.String()
}

func contactsText(salon config.SalonInfo) string {
	return fmt.Sprintf(`📞 <b>Контакты</b>

📱 Телефон: %s
📍 Адрес: %s
🚇 %s
⏰ %s

💌 Или задайте вопрос прямо здесь, и мы ответим в течение 15 минут!`,
		html.EscapeString(salon.Phone), html.EscapeString(salon.Address),
		html.EscapeString(salon.Metro), html.EscapeString(salon.WorkingHours))
}

func locationText(salon config.SalonInfo) string {
	return fmt.Sprintf("📍 <b>Как нас найти</b>\n\n%s\n%s", html.EscapeString(salon.Address), html.EscapeString(salon.Metro))
}

func aboutText(salon config.SalonInfo) string {
	return fmt.Sprintf(`💖 <b>О нашем салоне</b>

%s - место, где рождается красота!

🎯 <b>Наши принципы:</b>
• Качество выше всего
• Индивидуальный подход к каждому
• Постоянное обучение новым техникам
• Только безопасные материалы

<b>Ждём вас в нашем уютном салоне!</b> 💅✨`, html.EscapeString(salon.Name))
}

func promotionsText(loyalty config.LoyaltyConfig) string {
	var b strings.Builder
	b.WriteString("🎁 <b>Текущие акции и скидки!</b>\n\n")
	fmt.Fprintf(&b, "🔥 <b>НОВИЧКАМ:</b> скидка %d%% на первую запись!\n\n", loyalty.FirstVisitPercent)
	fmt.Fprintf(&b, "👯 <b>ПРИВЕДИ ПОДРУГУ:</b> скидка %d%% вам и подруге!\n\n", loyalty.ReferralPercent)
	fmt.Fprintf(&b, "🎂 <b>ИМЕНИННИКАМ:</b> скидка %d%% в дни рядом с днём рождения!\n\n", loyalty.BirthdayPercent)
	if len(loyalty.Milestones) > 0 {
		b.WriteString("🏆 <b>ПОСТОЯННЫМ КЛИЕНТАМ:</b>\n")
		for _, m := range loyalty.Milestones {
			fmt.Fprintf(&b, "• с %d-го визита - %d%%\n", m.Visits, m.Percent)
		}
	}
	return b.String()
}

func bookingStepText(step services.BookingStep) string {
	var b strings.Builder
	if step.Restarted {
		b.WriteString(textSessionExpired)
	}

	switch step.State {
	case services.StateChoosingService:
		b.WriteString("💅 <b>Выберите услугу:</b>")
	case services.StateChoosingDate:
		fmt.Fprintf(&b, "Вы выбрали: <b>%s</b> - %s\n\n📅 Теперь выберите дату:",
			html.EscapeString(step.Service.Name), utils.FormatRub(step.Service.Price))
	case services.StateChoosingTime:
		fmt.Fprintf(&b, "📅 Дата: <b>%s</b>\n\n⏰ Выберите удобное время:", utils.FormatDate(step.Draft.Date))
	case services.StateConfirming, services.StateAwaitingContact:
		b.WriteString(bookingSummary(step))
		if step.State == services.StateAwaitingContact {
			b.WriteString("\n\n📱 Поделитесь, пожалуйста, номером телефона, чтобы мы могли подтвердить запись.")
		} else {
			b.WriteString("\n\nВсё верно?")
		}
	case services.StateApplyingDiscount:
		if len(step.Offers) == 0 {
			b.WriteString("🎁 Сейчас для вас нет доступных скидок.")
		} else {
			b.WriteString("🎁 <b>Выберите скидку:</b>")
		}
	}
	return b.String()
}

func bookingSummary(step services.BookingStep) string {
	var b strings.Builder
	b.WriteString("📋 <b>Ваша запись:</b>\n\n")
	fmt.Fprintf(&b, "💅 Услуга: %s\n", html.EscapeString(step.Service.Name))
	fmt.Fprintf(&b, "📅 Дата: %s\n", utils.FormatDate(step.Draft.Date))
	fmt.Fprintf(&b, "⏰ Время: %s\n", step.Draft.Slot)
	if d := step.Draft.Discount; d != nil {
		fmt.Fprintf(&b, "🎁 %s: %d%%\n", services.DiscountLabel(*d), d.Percent)
		fmt.Fprintf(&b, "💰 Стоимость: <s>%s</s> %s", utils.FormatRub(step.OriginalPrice), utils.FormatRub(step.FinalPrice))
	} else {
		fmt.Fprintf(&b, "💰 Стоимость: %s", utils.FormatRub(step.FinalPrice))
	}
	return b.String()
}

func bookingCreatedText(a *models.Appointment) string {
	return fmt.Sprintf(`✅ <b>Заявка принята!</b>

💅 %s
📅 %s в %s
💰 %s

Администратор подтвердит запись в ближайшее время.`,
		html.EscapeString(a.ServiceName), utils.FormatDate(a.Date), a.Time, utils.FormatRub(a.FinalPrice))
}

func profileText(p *services.Profile) string {
	u := p.User
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n\n", html.EscapeString(u.DisplayName()))
	if u.Phone != "" {
		fmt.Fprintf(&b, "📱 %s\n", html.EscapeString(u.Phone))
	}
	if u.Birthday != nil {
		fmt.Fprintf(&b, "🎂 %s\n", utils.FormatDate(*u.Birthday))
	} else {
		b.WriteString("🎂 не указан (/birthday ДД.ММ.ГГГГ)\n")
	}
	fmt.Fprintf(&b, "💅 Визитов: %d\n", u.VisitsCount)
	fmt.Fprintf(&b, "💰 Потрачено: %s\n", utils.FormatRub(u.TotalSpent))
	if u.DiscountPercent > 0 {
		fmt.Fprintf(&b, "⭐ Скидка постоянного клиента: %d%%\n", u.DiscountPercent)
	}
	fmt.Fprintf(&b, "📋 Записей: %d\n🎁 Активных скидок: %d", len(p.Appointments), len(p.Discounts))
	return b.String()
}

var statusLabels = map[string]string{
	models.StatusPending:   "⏳ ожидает",
	models.StatusConfirmed: "✅ подтверждена",
	models.StatusCompleted: "🏁 завершена",
	models.StatusCancelled: "❌ отменена",
	models.StatusNoShow:    "🙈 неявка",
}

func appointmentLine(a models.Appointment) string {
	return fmt.Sprintf("%s %s - %s (%s) %s",
		utils.FormatDate(a.Date), a.Time, html.EscapeString(a.ServiceName), utils.FormatRub(a.FinalPrice), statusLabels[a.Status])
}

func appointmentsText(title string, appointments []models.Appointment) string {
	if len(appointments) == 0 {
		return textNoAppointments
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", title)
	for _, a := range appointments {
		b.WriteString(appointmentLine(a))
		if a.User != nil {
			fmt.Fprintf(&b, "\n   👤 %s %s", html.EscapeString(a.User.DisplayName()), html.EscapeString(a.User.Phone))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func discountsText(discounts []models.Discount) string {
	if len(discounts) == 0 {
		return textNoDiscounts
	}
	var b strings.Builder
	b.WriteString("🎁 <b>Ваши скидки:</b>\n\n")
	for _, d := range discounts {
		label := services.DiscountLabel(services.DiscountOffer{Type: d.Type, Milestone: d.Milestone})
		fmt.Fprintf(&b, "• %s - %d%%\n", label, d.Percent)
	}
	return b.String()
}

func inviteText(link string, percent int) string {
	return fmt.Sprintf("🎫 <b>Пригласите подругу!</b>\n\nОтправьте ей ссылку, и вы обе получите скидку %d%%:\n%s", percent, link)
}

func reviewsText(reviews []models.Review) string {
	if len(reviews) == 0 {
		return textNoReviews
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⭐ <b>Отзывы наших клиентов</b> (средняя оценка %.1f)\n\n", services.AverageRating(reviews))
	for _, r := range reviews {
		name := "Клиент"
		if r.User != nil {
			name = r.User.DisplayName()
		}
		fmt.Fprintf(&b, "%s <b>%s:</b> %s\n\n", strings.Repeat("⭐", r.Rating), html.EscapeString(name), html.EscapeString(r.Text))
	}
	return b.String()
}

func statsText(s *services.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Статистика салона</b>\n\n")
	fmt.Fprintf(&b, "👥 Клиентов: %d\n", s.TotalUsers)
	fmt.Fprintf(&b, "📅 Всего записей: %d\n", s.TotalAppointments)
	fmt.Fprintf(&b, "⏳ На рассмотрении: %d\n", s.Pending)
	fmt.Fprintf(&b, "✅ Подтверждено: %d\n", s.Confirmed)
	fmt.Fprintf(&b, "🏁 Завершено: %d\n", s.Completed)
	fmt.Fprintf(&b, "❌ Отменено: %d\n", s.Cancelled)
	fmt.Fprintf(&b, "💰 Выручка: %s\n", utils.FormatRub(s.Income))
	fmt.Fprintf(&b, "🧾 Средний чек: %s\n", utils.FormatRub(s.AverageCheck))
	if len(s.TopServices) > 0 {
		b.WriteString("\n<b>Популярные услуги:</b>\n")
		for _, t := range s.TopServices {
			fmt.Fprintf(&b, "• %s - %d (%s)\n", html.EscapeString(t.Name), t.Count, utils.FormatRub(t.Revenue))
		}
	}
	if len(s.TopClients) > 0 {
		b.WriteString("\n<b>Лучшие клиенты:</b>\n")
		for _, c := range s.TopClients {
			fmt.Fprintf(&b, "• %s - %d визитов, %s\n", html.EscapeString(c.Name), c.Visits, utils.FormatRub(c.Spent))
		}
	}
	return b.String()
}

func broadcastDoneText(m *models.BroadcastMessage) string {
	return fmt.Sprintf("📢 Рассылка завершена.\n✅ Доставлено: %d\n❌ Ошибок: %d", m.SentCount, m.FailedCount)
}
