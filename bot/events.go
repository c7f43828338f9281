package bot

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"nailstudio-bot/services"
	"nailstudio-bot/utils"

	"github.com/google/uuid"
)

// Callback data sent by inline buttons.
const (
	cbService         = "service_"
	cbBookNow         = "book_now"
	cbDate            = "date_"
	cbTime            = "time_"
	cbApplyDiscount   = "apply_discount"
	cbUseDiscount     = "use_discount_"
	cbNoDiscount      = "no_discount"
	cbConfirmBooking  = "confirm_booking"
	cbCancelBooking   = "cancel_booking"
	cbBack            = "back"
	cbMainMenu        = "back_to_main"
	cbGallery         = "gallery_"
	cbRate            = "rate_"
	cbApprove         = "approve_"
	cbReject          = "reject_"
	cbComplete        = "complete_"
	cbNoShow          = "noshow_"
	cbCancelMine      = "cancel_appt_"
	cbAdminStats      = "admin_stats"
	cbAdminPending    = "admin_pending"
	cbAdminAll        = "admin_all"
	cbAdminAddPhoto   = "admin_add_photo"
	cbAdminBroadcast  = "admin_broadcast"
	cbMyAppointments  = "my_appointments"
	cbMyDiscounts     = "my_discounts"
	cbInviteFriend    = "invite_friend"
	cbLeaveReview     = "leave_review"
	cbReadReviews     = "read_reviews"
	cbSkipPhoto       = "skip_photo"
	cbCancelReview    = "cancel_review"
	cbGetLocation     = "get_location"
	cbWriteToAdmin    = "write_to_admin"
	cbCancelAdminFlow = "admin_cancel"
)

// Action is a non-booking user intent.
type Action int

const (
	ActionNone Action = iota
	ActionMainMenu
	ActionServices
	ActionGallery
	ActionProfile
	ActionReviews
	ActionContacts
	ActionAbout
	ActionPromotions
	ActionCancel
	ActionRate
	ActionApprove
	ActionReject
	ActionComplete
	ActionNoShow
	ActionCancelAppointment
	ActionAdminStats
	ActionAdminPending
	ActionAdminAll
	ActionAdminAddPhoto
	ActionAdminBroadcast
	ActionAdminCancelFlow
	ActionMyAppointments
	ActionMyDiscounts
	ActionInvite
	ActionLeaveReview
	ActionReadReviews
	ActionSkipPhoto
	ActionCancelReview
	ActionLocation
	ActionWriteToAdmin
)

// Input is a decoded button press or menu selection. Exactly one of Booking and
// Action is set.
type Input struct {
	Booking services.Event
	Action  Action
	Arg     string
	ID      uuid.UUID
	Rating  int
}

var ErrUnknownCallback = errors.New("unknown callback data")

var exactCallbacks = map[string]Input{
	cbBookNow:         {Booking: services.StartBooking{}},
	cbApplyDiscount:   {Booking: services.DiscountRequested{}},
	cbNoDiscount:      {Booking: services.DiscountSkipped{}},
	cbConfirmBooking:  {Booking: services.BookingConfirmed{}},
	cbCancelBooking:   {Booking: services.BookingCancelled{}},
	cbBack:            {Booking: services.StepBack{}},
	cbMainMenu:        {Action: ActionMainMenu},
	cbAdminStats:      {Action: ActionAdminStats},
	cbAdminPending:    {Action: ActionAdminPending},
	cbAdminAll:        {Action: ActionAdminAll},
	cbAdminAddPhoto:   {Action: ActionAdminAddPhoto},
	cbAdminBroadcast:  {Action: ActionAdminBroadcast},
	cbCancelAdminFlow: {Action: ActionAdminCancelFlow},
	cbMyAppointments:  {Action: ActionMyAppointments},
	cbMyDiscounts:     {Action: ActionMyDiscounts},
	cbInviteFriend:    {Action: ActionInvite},
	cbLeaveReview:     {Action: ActionLeaveReview},
	cbReadReviews:     {Action: ActionReadReviews},
	cbSkipPhoto:       {Action: ActionSkipPhoto},
	cbCancelReview:    {Action: ActionCancelReview},
	cbGetLocation:     {Action: ActionLocation},
	cbWriteToAdmin:    {Action: ActionWriteToAdmin},
}

var idCallbacks = []struct {
	prefix string
	action Action
}{
	{cbApprove, ActionApprove},
	{cbReject, ActionReject},
	{cbComplete, ActionComplete},
	{cbNoShow, ActionNoShow},
	{cbCancelMine, ActionCancelAppointment},
}

// DecodeCallback turns inline button data into an Input. Dates are read in loc.
func DecodeCallback(data string, loc *time.Location) (Input, error) {
	if in, ok := exactCallbacks[data]; ok {
		return in, nil
	}

	for _, c := range idCallbacks {
		if raw, ok := strings.CutPrefix(data, c.prefix); ok {
			id, err := uuid.Parse(raw)
			if err != nil {
				return Input{}, ErrUnknownCallback
			}
			return Input{Action: c.action, ID: id}, nil
		}
	}

	switch {
	case strings.HasPrefix(data, cbUseDiscount):
		return Input{Booking: services.DiscountChosen{Key: strings.TrimPrefix(data, cbUseDiscount)}}, nil
	case strings.HasPrefix(data, cbService):
		return Input{Booking: services.ServiceChosen{ServiceID: strings.TrimPrefix(data, cbService)}}, nil
	case strings.HasPrefix(data, cbDate):
		date, err := utils.ParseDate(strings.TrimPrefix(data, cbDate), loc)
		if err != nil {
			return Input{}, ErrUnknownCallback
		}
		return Input{Booking: services.DateChosen{Date: date}}, nil
	case strings.HasPrefix(data, cbTime):
		return Input{Booking: services.TimeChosen{Slot: strings.TrimPrefix(data, cbTime)}}, nil
	case strings.HasPrefix(data, cbGallery):
		return Input{Action: ActionGallery, Arg: strings.TrimPrefix(data, cbGallery)}, nil
	case strings.HasPrefix(data, cbRate):
		rating, err := strconv.Atoi(strings.TrimPrefix(data, cbRate))
		if err != nil {
			return Input{}, ErrUnknownCallback
		}
		return Input{Action: ActionRate, Rating: rating}, nil
	}
	return Input{}, ErrUnknownCallback
}

// Main menu labels.
const (
	menuServices   = "💅 Услуги и цены"
	menuGallery    = "🖼️ Галерея работ"
	menuBook       = "📅 Записаться"
	menuProfile    = "👤 Мой профиль"
	menuReviews    = "⭐ Отзывы"
	menuContacts   = "📞 Контакты"
	menuAbout      = "💖 О нас"
	menuPromotions = "🎁 Акции"
	menuCancel     = "❌ Отмена"
)

var menuInputs = map[string]Input{
	menuServices:   {Action: ActionServices},
	menuGallery:    {Action: ActionGallery},
	menuBook:       {Booking: services.StartBooking{}},
	menuProfile:    {Action: ActionProfile},
	menuReviews:    {Action: ActionReviews},
	menuContacts:   {Action: ActionContacts},
	menuAbout:      {Action: ActionAbout},
	menuPromotions: {Action: ActionPromotions},
	menuCancel:     {Action: ActionCancel},
}

// DecodeMenu recognises a main-menu button press.
func DecodeMenu(text string) (Input, bool) {
	in, ok := menuInputs[strings.TrimSpace(text)]
	return in, ok
}
