package bot

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/services"
	"nailstudio-bot/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	reviewsPageSize      = 5
	recentAdminListLimit = 20
)

// Sender is the part of the Telegram client the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services bundles the domain services the handler routes to.
type Services struct {
	Sessions     *services.SessionStore
	Users        *services.UserService
	Booking      *services.BookingMachine
	Appointments *services.AppointmentService
	Admin        *services.AdminService
	Gallery      *services.GalleryService
	Reviews      *services.ReviewService
}

type Handler struct {
	api         Sender
	botUsername string
	svc         Services
	cfg         *config.Config
	loc         *time.Location
	log         *zap.Logger
}

func NewHandler(api Sender, botUsername string, svc Services, cfg *config.Config, log *zap.Logger) *Handler {
	loc := cfg.App.Location
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		api:         api,
		botUsername: botUsername,
		svc:         svc,
		cfg:         cfg,
		loc:         loc,
		log:         log.With(zap.String("component", "bot")),
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Update handler panicked", zap.Int("update_id", update.UpdateID), zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) register(ctx context.Context, from *tgbotapi.User, payload string) (*models.User, error) {
	user, _, err := h.svc.Users.Register(ctx, store.UserProfile{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}, payload)
	return user, err
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	payload := ""
	if msg.IsCommand() && msg.Command() == "start" {
		payload = msg.CommandArguments()
	}
	user, err := h.register(ctx, msg.From, payload)
	if err != nil {
		h.log.Error("Failed to register user", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.send(chatID, textGenericFailure, nil)
		return
	}

	switch {
	case msg.IsCommand():
		h.handleCommand(ctx, msg, user)
	case msg.Contact != nil:
		h.handleContact(ctx, msg, user)
	case len(msg.Photo) > 0:
		h.handlePhoto(ctx, msg, user)
	case msg.Text != "":
		h.handleText(ctx, msg, user)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		h.send(chatID, welcomeText(h.cfg.Salon), mainMenuKeyboard())
	case "help":
		h.send(chatID, helpText, mainMenuKeyboard())
	case "admin":
		if !h.svc.Admin.IsAdmin(user.TelegramID) {
			h.send(chatID, textAccessDenied, nil)
			return
		}
		h.send(chatID, textAdminMenu, adminMenuKeyboard())
	case "cancel":
		h.svc.Sessions.Delete(user.TelegramID)
		h.send(chatID, textCancelled, mainMenuKeyboard())
	case "birthday":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			h.send(chatID, textBirthdayUsage, nil)
			return
		}
		if err := h.svc.Users.SetBirthday(ctx, user, arg); err != nil {
			if errors.Is(err, services.ErrInvalidBirthday) {
				h.send(chatID, textBirthdayUsage, nil)
				return
			}
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, textBirthdaySaved, nil)
	default:
		h.send(chatID, textUseMenu, mainMenuKeyboard())
	}
}

func (h *Handler) handleContact(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	chatID := msg.Chat.ID
	if msg.Contact.UserID != 0 && msg.Contact.UserID != msg.From.ID {
		h.send(chatID, textForeignContact, shareContactKeyboard())
		return
	}

	step, err := h.svc.Booking.Handle(ctx, user, services.ContactShared{Phone: msg.Contact.PhoneNumber})
	switch {
	case err == nil:
		h.send(chatID, bookingCreatedText(step.Appointment), mainMenuKeyboard())
	case errors.Is(err, services.ErrInvalidPhone):
		h.send(chatID, textInvalidPhone, shareContactKeyboard())
	case errors.Is(err, services.ErrIncompleteDraft):
		h.send(chatID, textIncompleteDraft, mainMenuKeyboard())
	case errors.Is(err, services.ErrInvalidOption):
		h.send(chatID, textDiscountGone, mainMenuKeyboard())
		h.send(chatID, bookingStepText(step), confirmKeyboard())
	default:
		h.replyError(chatID, err)
	}
}

func (h *Handler) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	chatID := msg.Chat.ID
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	if h.svc.Admin.InFlow(user.TelegramID, services.FlowBroadcast) {
		h.broadcast(ctx, chatID, user, msg.Caption, fileID)
		return
	}
	if h.svc.Admin.IsAdmin(user.TelegramID) {
		_, categoryErr := services.CategoryFromCaption(msg.Caption)
		if h.svc.Admin.InFlow(user.TelegramID, services.FlowGalleryUpload) || categoryErr == nil {
			h.addGalleryImage(ctx, chatID, user, fileID, msg.Caption)
			return
		}
	}
	if stage, ok := h.svc.Reviews.Stage(user.TelegramID); ok && stage == services.ReviewPhoto {
		h.submitReview(ctx, chatID, user, fileID)
		return
	}
	h.send(chatID, textUseMenu, mainMenuKeyboard())
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	chatID := msg.Chat.ID

	if in, ok := DecodeMenu(msg.Text); ok {
		h.dispatch(ctx, chatID, 0, user, in)
		return
	}
	if h.svc.Admin.InFlow(user.TelegramID, services.FlowBroadcast) {
		h.broadcast(ctx, chatID, user, msg.Text, "")
		return
	}
	stage, inReview := h.svc.Reviews.Stage(user.TelegramID)
	if inReview && stage == services.ReviewRating {
		h.send(chatID, textRatePrompt, ratingKeyboard())
		return
	}
	if inReview && stage == services.ReviewText {
		if err := h.svc.Reviews.SetText(user.TelegramID, msg.Text); err != nil {
			h.send(chatID, textReviewTextPrompt, nil)
			return
		}
		h.send(chatID, textReviewPhoto, skipPhotoKeyboard())
		return
	}
	if !h.svc.Admin.IsAdmin(user.TelegramID) && utf8.RuneCountInString(strings.TrimSpace(msg.Text)) > services.MinQuestionLength {
		if _, err := h.svc.Admin.ForwardQuestion(ctx, user, msg.Text); err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, textQuestionSent, mainMenuKeyboard())
		return
	}
	h.send(chatID, textUseMenu, mainMenuKeyboard())
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		h.answer(cb, "")
		return
	}

	in, err := DecodeCallback(cb.Data, h.loc)
	if err != nil {
		h.log.Debug("Unknown callback", zap.String("data", cb.Data))
		h.answer(cb, textOptionGone)
		return
	}
	h.answer(cb, "")

	user, err := h.register(ctx, cb.From, "")
	if err != nil {
		h.log.Error("Failed to register user", zap.Int64("telegram_id", cb.From.ID), zap.Error(err))
		h.send(cb.Message.Chat.ID, textGenericFailure, nil)
		return
	}
	h.dispatch(ctx, cb.Message.Chat.ID, cb.Message.MessageID, user, in)
}

// dispatch runs a decoded input. messageID is the message to edit in place, 0 to
// answer with a new message.
func (h *Handler) dispatch(ctx context.Context, chatID int64, messageID int, user *models.User, in Input) {
	if in.Booking != nil {
		h.handleBooking(ctx, chatID, messageID, user, in.Booking)
		return
	}

	switch in.Action {
	case ActionMainMenu:
		h.send(chatID, textUseMenu, mainMenuKeyboard())
	case ActionServices:
		h.send(chatID, servicesText(h.cfg.Catalog), servicesKeyboard(h.cfg.Catalog))
	case ActionGallery:
		if in.Arg == "" {
			h.send(chatID, "🖼️ <b>Галерея наших работ</b>\n\nВыберите категорию:", galleryKeyboard())
			return
		}
		h.showGallery(ctx, chatID, in.Arg)
	case ActionContacts:
		h.send(chatID, contactsText(h.cfg.Salon), contactsKeyboard())
	case ActionLocation:
		h.send(chatID, locationText(h.cfg.Salon), nil)
	case ActionWriteToAdmin:
		h.send(chatID, textAskQuestion, nil)
	case ActionAbout:
		h.send(chatID, aboutText(h.cfg.Salon), mainMenuKeyboard())
	case ActionPromotions:
		h.send(chatID, promotionsText(h.cfg.Loyalty), mainMenuKeyboard())
	case ActionCancel:
		h.svc.Sessions.Delete(user.TelegramID)
		h.send(chatID, textCancelled, mainMenuKeyboard())

	case ActionProfile, ActionMyDiscounts:
		profile, err := h.svc.Users.Profile(ctx, user)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		if in.Action == ActionMyDiscounts {
			h.send(chatID, discountsText(profile.Discounts), nil)
			return
		}
		h.send(chatID, profileText(profile), profileKeyboard())
	case ActionMyAppointments:
		appointments, err := h.svc.Appointments.ForUser(ctx, user.ID)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		if kb, ok := myAppointmentsKeyboard(appointments); ok {
			h.send(chatID, appointmentsText("📋 Мои записи", appointments), kb)
			return
		}
		h.send(chatID, appointmentsText("📋 Мои записи", appointments), nil)
	case ActionCancelAppointment:
		if _, err := h.svc.Appointments.CancelByUser(ctx, user.TelegramID, in.ID); err != nil {
			h.replyError(chatID, err)
			return
		}
		h.edit(chatID, messageID, textBookingCancelled, nil)
	case ActionInvite:
		link := services.ReferralLink(h.botUsername, user)
		h.send(chatID, inviteText(link, h.cfg.Loyalty.ReferralPercent), nil)

	case ActionReviews, ActionReadReviews:
		reviews, err := h.svc.Reviews.Latest(ctx, reviewsPageSize)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		if in.Action == ActionReviews {
			h.send(chatID, reviewsText(reviews), reviewsKeyboard())
			return
		}
		h.send(chatID, reviewsText(reviews), nil)
	case ActionLeaveReview:
		h.svc.Reviews.Start(user.TelegramID)
		h.send(chatID, textRatePrompt, ratingKeyboard())
	case ActionRate:
		err := h.svc.Reviews.Rate(user.TelegramID, in.Rating)
		if errors.Is(err, services.ErrDraftMissing) {
			h.svc.Reviews.Start(user.TelegramID)
			err = h.svc.Reviews.Rate(user.TelegramID, in.Rating)
		}
		if err != nil {
			h.edit(chatID, messageID, textRatePrompt, ptr(ratingKeyboard()))
			return
		}
		h.edit(chatID, messageID, textReviewTextPrompt, nil)
	case ActionSkipPhoto:
		h.submitReview(ctx, chatID, user, "")
	case ActionCancelReview:
		h.svc.Sessions.Delete(user.TelegramID)
		h.edit(chatID, messageID, textCancelled, nil)

	case ActionApprove, ActionReject, ActionComplete, ActionNoShow:
		h.decide(ctx, chatID, messageID, user, in)
	case ActionAdminStats, ActionAdminPending, ActionAdminAll, ActionAdminAddPhoto, ActionAdminBroadcast, ActionAdminCancelFlow:
		h.handleAdminAction(ctx, chatID, user, in.Action)
	}
}

func (h *Handler) handleBooking(ctx context.Context, chatID int64, messageID int, user *models.User, ev services.Event) {
	step, err := h.svc.Booking.Handle(ctx, user, ev)
	notice := ""
	switch {
	case err == nil, errors.Is(err, services.ErrDraftMissing):
	case errors.Is(err, services.ErrInvalidOption), errors.Is(err, services.ErrStepOutOfOrder):
		notice = "⚠️ " + textOptionGone + "\n\n"
	default:
		h.replyError(chatID, err)
		return
	}

	switch step.State {
	case services.StateIdle:
		h.edit(chatID, messageID, textBookingCancelled, nil)
	case services.StateAwaitingContact:
		h.edit(chatID, messageID, bookingSummary(step), nil)
		h.send(chatID, notice+bookingStepText(step), shareContactKeyboard())
	default:
		markup := h.bookingKeyboard(step)
		h.edit(chatID, messageID, notice+bookingStepText(step), &markup)
	}
}

func (h *Handler) bookingKeyboard(step services.BookingStep) tgbotapi.InlineKeyboardMarkup {
	switch step.State {
	case services.StateChoosingDate:
		return datesKeyboard(step.Dates)
	case services.StateChoosingTime:
		return slotsKeyboard(step.Slots)
	case services.StateConfirming:
		return confirmKeyboard()
	case services.StateApplyingDiscount:
		return offersKeyboard(step.Offers)
	default:
		return servicesKeyboard(h.cfg.Catalog)
	}
}

func (h *Handler) showGallery(ctx context.Context, chatID int64, category string) {
	var images []models.GalleryImage
	if category == "random" {
		image, err := h.svc.Gallery.Random(ctx)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			h.replyError(chatID, err)
			return
		}
		if image != nil {
			images = append(images, *image)
		}
	} else {
		var err error
		if images, err = h.svc.Gallery.Images(ctx, category); err != nil {
			h.replyError(chatID, err)
			return
		}
	}

	if len(images) == 0 {
		h.send(chatID, textGalleryEmpty, galleryKeyboard())
		return
	}
	for _, img := range images {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(img.FileRef))
		if _, err := h.api.Send(photo); err != nil {
			h.log.Warn("Failed to send gallery photo", zap.String("image_id", img.ID.String()), zap.Error(err))
		}
	}
}

func (h *Handler) submitReview(ctx context.Context, chatID int64, user *models.User, photoRef string) {
	if _, err := h.svc.Reviews.Submit(ctx, user, photoRef); err != nil {
		if errors.Is(err, services.ErrDraftMissing) || errors.Is(err, services.ErrStepOutOfOrder) {
			h.send(chatID, textUseMenu, mainMenuKeyboard())
			return
		}
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, textReviewThanks, mainMenuKeyboard())
}

func (h *Handler) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := h.api.Send(msg); err != nil {
		h.log.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// edit replaces the text of a bot message, falling back to a new message.
func (h *Handler) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		if markup != nil {
			h.send(chatID, text, *markup)
		} else {
			h.send(chatID, text, nil)
		}
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = markup
	if _, err := h.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		h.log.Debug("Edit failed, sending a new message", zap.Error(err))
		h.edit(chatID, 0, text, markup)
	}
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.log.Debug("Failed to answer callback", zap.Error(err))
	}
}

func (h *Handler) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		h.send(chatID, textAccessDenied, nil)
	case errors.Is(err, services.ErrNotFound):
		h.send(chatID, textNotFound, nil)
	case errors.Is(err, services.ErrInvalidTransition):
		h.send(chatID, textAlreadyProcessed, nil)
	case errors.Is(err, services.ErrIncompleteDraft):
		h.send(chatID, textIncompleteDraft, bookAgainKeyboard())
	default:
		h.log.Error("Request failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.send(chatID, textGenericFailure, nil)
	}
}

func ptr[T any](v T) *T {
	return &v
}
