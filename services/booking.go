package services

import (
	"context"
	"fmt"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"
	"nailstudio-bot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingState int

const (
	StateIdle BookingState = iota
	StateChoosingService
	StateChoosingDate
	StateChoosingTime
	StateConfirming
	StateApplyingDiscount
	StateAwaitingContact
)

func (s BookingState) String() string {
	switch s {
	case StateChoosingService:
		return "choosing_service"
	case StateChoosingDate:
		return "choosing_date"
	case StateChoosingTime:
		return "choosing_time"
	case StateConfirming:
		return "confirming"
	case StateApplyingDiscount:
		return "applying_discount"
	case StateAwaitingContact:
		return "awaiting_contact"
	default:
		return "idle"
	}
}

// BookingDraft accumulates the wizard selections until a contact arrives.
type BookingDraft struct {
	State     BookingState
	ServiceID string
	Date      time.Time
	Slot      string
	Discount  *DiscountOffer
}

// Complete reports whether service, date and slot are all chosen.
func (d BookingDraft) Complete() bool {
	return d.ServiceID != "" && !d.Date.IsZero() && d.Slot != ""
}

// Event is one user selection fed into the booking wizard.
type Event interface {
	bookingEvent()
}

type (
	StartBooking      struct{}
	ServiceChosen     struct{ ServiceID string }
	DateChosen        struct{ Date time.Time }
	TimeChosen        struct{ Slot string }
	DiscountRequested struct{}
	DiscountChosen    struct{ Key string }
	DiscountSkipped   struct{}
	BookingConfirmed  struct{}
	ContactShared     struct{ Phone string }
	BookingCancelled  struct{}
	StepBack          struct{}
)

func (StartBooking) bookingEvent()      {}
func (ServiceChosen) bookingEvent()     {}
func (DateChosen) bookingEvent()        {}
func (TimeChosen) bookingEvent()        {}
func (DiscountRequested) bookingEvent() {}
func (DiscountChosen) bookingEvent()    {}
func (DiscountSkipped) bookingEvent()   {}
func (BookingConfirmed) bookingEvent()  {}
func (ContactShared) bookingEvent()     {}
func (BookingCancelled) bookingEvent()  {}
func (StepBack) bookingEvent()          {}

// BookingStep is the screen the wizard moved to, with the options to offer next.
type BookingStep struct {
	State         BookingState
	Draft         BookingDraft
	Service       config.Service
	Dates         []time.Time
	Slots         []string
	Offers        []DiscountOffer
	OriginalPrice int64
	FinalPrice    int64
	Appointment   *models.Appointment
	// Restarted is set when a lost draft forced the wizard back to the first step.
	Restarted bool
}

type BookingMachine struct {
	store      store.Store
	sessions   *SessionStore
	catalog    config.Catalog
	rules      DiscountRules
	admins     config.AdminConfig
	reminders  *ReminderService
	dispatcher Dispatcher
	loc        *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewBookingMachine(
	st store.Store,
	sessions *SessionStore,
	cfg *config.Config,
	reminders *ReminderService,
	dispatcher Dispatcher,
	log *zap.Logger,
) *BookingMachine {
	loc := cfg.App.Location
	if loc == nil {
		loc = time.Local
	}
	return &BookingMachine{
		store:      st,
		sessions:   sessions,
		catalog:    cfg.Catalog,
		rules:      NewDiscountRules(cfg.Loyalty),
		admins:     cfg.Admin,
		reminders:  reminders,
		dispatcher: dispatcher,
		loc:        loc,
		now:        time.Now,
		log:        log.With(zap.String("service", "booking")),
	}
}

// AvailableDates lists the bookable days: tomorrow and the six days after it.
func AvailableDates(now time.Time, loc *time.Location) []time.Time {
	today := utils.BeginningOfDay(now.In(loc))
	dates := make([]time.Time, 0, 7)
	for i := 1; i <= 7; i++ {
		dates = append(dates, today.AddDate(0, 0, i))
	}
	return dates
}

// Handle applies ev to the user's draft. On ErrDraftMissing the returned step is
// the restarted first screen and should still be shown.
func (m *BookingMachine) Handle(ctx context.Context, user *models.User, ev Event) (BookingStep, error) {
	conv := m.sessions.Open(user.TelegramID)

	switch ev := ev.(type) {
	case StartBooking:
		m.restart(conv)
		return m.step(ctx, user, conv.Booking)

	case BookingCancelled:
		m.sessions.Delete(user.TelegramID)
		return BookingStep{State: StateIdle}, nil

	case ServiceChosen:
		if _, ok := m.catalog.Service(ev.ServiceID); !ok {
			if conv.Flow != FlowBooking || conv.Booking.State == StateIdle {
				m.restart(conv)
			}
			return m.stay(ctx, user, conv.Booking, ErrInvalidOption)
		}
		if conv.Flow != FlowBooking {
			m.restart(conv)
		}
		draft := &conv.Booking
		if draft.ServiceID != ev.ServiceID {
			draft.Date, draft.Slot, draft.Discount = time.Time{}, "", nil
		}
		draft.ServiceID = ev.ServiceID
		draft.State = StateChoosingDate
		return m.step(ctx, user, *draft)

	case ContactShared:
		return m.commit(ctx, user, conv, ev.Phone)
	}

	if conv.Flow != FlowBooking || conv.Booking.State == StateIdle {
		m.restart(conv)
		step, err := m.step(ctx, user, conv.Booking)
		if err != nil {
			return step, err
		}
		step.Restarted = true
		return step, ErrDraftMissing
	}

	draft := &conv.Booking
	switch ev := ev.(type) {
	case DateChosen:
		if draft.ServiceID == "" {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		date, ok := m.matchDate(ev.Date)
		if !ok {
			return m.stay(ctx, user, *draft, ErrInvalidOption)
		}
		if !date.Equal(draft.Date) {
			draft.Slot, draft.Discount = "", nil
		}
		draft.Date = date
		draft.State = StateChoosingTime

	case TimeChosen:
		if draft.ServiceID == "" || draft.Date.IsZero() {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		if !m.catalog.HasSlot(ev.Slot) {
			return m.stay(ctx, user, *draft, ErrInvalidOption)
		}
		draft.Slot = ev.Slot
		draft.State = StateConfirming

	case DiscountRequested:
		if !draft.Complete() {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		draft.State = StateApplyingDiscount

	case DiscountChosen:
		if draft.State != StateApplyingDiscount {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		offers, err := m.offers(ctx, user)
		if err != nil {
			return BookingStep{State: draft.State, Draft: *draft}, err
		}
		offer, ok := FindOffer(offers, ev.Key)
		if !ok {
			return m.stay(ctx, user, *draft, ErrInvalidOption)
		}
		draft.Discount = &offer
		draft.State = StateConfirming

	case DiscountSkipped:
		if !draft.Complete() {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		draft.Discount = nil
		draft.State = StateConfirming

	case BookingConfirmed:
		if !draft.Complete() {
			return m.stay(ctx, user, *draft, ErrStepOutOfOrder)
		}
		draft.State = StateAwaitingContact

	case StepBack:
		switch draft.State {
		case StateChoosingDate:
			draft.State = StateChoosingService
		case StateChoosingTime:
			draft.State = StateChoosingDate
		case StateConfirming:
			draft.State = StateChoosingTime
		case StateApplyingDiscount, StateAwaitingContact:
			draft.State = StateConfirming
		}

	default:
		return m.stay(ctx, user, *draft, fmt.Errorf("unsupported booking event %T", ev))
	}

	return m.step(ctx, user, *draft)
}

// Draft returns a copy of the user's live draft.
func (m *BookingMachine) Draft(telegramID int64) (BookingDraft, bool) {
	conv, ok := m.sessions.Get(telegramID)
	if !ok || conv.Flow != FlowBooking {
		return BookingDraft{}, false
	}
	return conv.Booking, true
}

func (m *BookingMachine) restart(conv *Conversation) {
	conv.Reset()
	conv.Flow = FlowBooking
	conv.Booking.State = StateChoosingService
}

func (m *BookingMachine) stay(ctx context.Context, user *models.User, draft BookingDraft, cause error) (BookingStep, error) {
	step, err := m.step(ctx, user, draft)
	if err != nil {
		return step, err
	}
	return step, cause
}

func (m *BookingMachine) step(ctx context.Context, user *models.User, draft BookingDraft) (BookingStep, error) {
	step := BookingStep{State: draft.State, Draft: draft}
	if svc, ok := m.catalog.Service(draft.ServiceID); ok {
		step.Service = svc
		step.OriginalPrice = svc.Price
		step.FinalPrice = svc.Price
		if draft.Discount != nil {
			step.FinalPrice = FinalPrice(svc.Price, draft.Discount.Percent)
		}
	}

	switch draft.State {
	case StateChoosingDate:
		step.Dates = AvailableDates(m.now(), m.loc)
	case StateChoosingTime:
		step.Slots = m.catalog.Slots
	case StateApplyingDiscount:
		offers, err := m.offers(ctx, user)
		if err != nil {
			return step, err
		}
		step.Offers = offers
	}
	return step, nil
}

func (m *BookingMachine) offers(ctx context.Context, user *models.User) ([]DiscountOffer, error) {
	grants, err := m.store.ListUserDiscounts(ctx, user.ID, true)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return append(m.rules.Eligible(user, m.now().In(m.loc)), GrantOffers(grants)...), nil
}

func (m *BookingMachine) matchDate(date time.Time) (time.Time, bool) {
	y, mo, d := date.Date()
	for _, candidate := range AvailableDates(m.now(), m.loc) {
		cy, cmo, cd := candidate.Date()
		if y == cy && mo == cmo && d == cd {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// commit turns a complete draft plus the shared phone into a pending appointment.
func (m *BookingMachine) commit(ctx context.Context, user *models.User, conv *Conversation, phone string) (BookingStep, error) {
	phone = utils.NormalizePhone(phone)
	if !utils.ValidatePhone(phone) {
		return BookingStep{State: conv.Booking.State, Draft: conv.Booking}, ErrInvalidPhone
	}

	// the phone is kept even when no appointment comes out of it
	if user.Phone != phone {
		user.Phone = phone
		if err := m.store.SaveUser(ctx, user); err != nil {
			return BookingStep{State: conv.Booking.State, Draft: conv.Booking}, fmt.Errorf("save phone: %w", err)
		}
	}

	if conv.Flow != FlowBooking {
		m.sessions.Delete(user.TelegramID)
		return BookingStep{State: StateIdle}, ErrIncompleteDraft
	}
	draft := conv.Booking
	if !draft.Complete() {
		return m.stay(ctx, user, draft, ErrIncompleteDraft)
	}
	svc, ok := m.catalog.Service(draft.ServiceID)
	if !ok {
		return m.stay(ctx, user, draft, ErrInvalidOption)
	}
	if draft.Discount != nil {
		offers, err := m.offers(ctx, user)
		if err != nil {
			return BookingStep{State: draft.State, Draft: draft}, err
		}
		offer, ok := FindOffer(offers, draft.Discount.Key)
		if !ok {
			// the user no longer qualifies, e.g. a visit was approved meanwhile
			conv.Booking.Discount = nil
			conv.Booking.State = StateConfirming
			return m.stay(ctx, user, conv.Booking, ErrInvalidOption)
		}
		draft.Discount = &offer
	}

	appointment := &models.Appointment{
		ID:            uuid.New(),
		UserID:        user.ID,
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		OriginalPrice: svc.Price,
		FinalPrice:    svc.Price,
		Date:          draft.Date,
		Time:          draft.Slot,
		Status:        models.StatusPending,
	}
	if draft.Discount != nil {
		appointment.DiscountType = draft.Discount.Type
		appointment.DiscountPercent = draft.Discount.Percent
		appointment.FinalPrice = FinalPrice(svc.Price, draft.Discount.Percent)
	}

	err := m.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateAppointment(ctx, appointment); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		if draft.Discount != nil {
			if err := m.useDiscount(ctx, tx, user, *draft.Discount); err != nil {
				return err
			}
		}
		if _, err := m.reminders.Schedule(ctx, tx, appointment); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
		return nil
	})
	if err != nil {
		m.log.Error("Commit booking failed", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		return BookingStep{State: draft.State, Draft: draft}, err
	}

	m.sessions.Delete(user.TelegramID)
	m.log.Info("Appointment created",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("service", appointment.ServiceID),
		zap.Int64("final_price", appointment.FinalPrice),
	)

	text := NewAppointmentAdminText(user, appointment)
	for _, adminID := range m.admins.IDs {
		Notify(ctx, m.log, m.dispatcher, Notification{
			Kind:          KindNewAppointment,
			To:            Recipient{TelegramID: adminID},
			Text:          text,
			AppointmentID: appointment.ID,
		})
	}

	appointment.User = user
	return BookingStep{State: StateIdle, Draft: draft, Service: svc, OriginalPrice: appointment.OriginalPrice, FinalPrice: appointment.FinalPrice, Appointment: appointment}, nil
}

// useDiscount marks the stored grant behind offer as used, recording one when the
// offer came from the rules alone.
func (m *BookingMachine) useDiscount(ctx context.Context, tx store.Store, user *models.User, offer DiscountOffer) error {
	now := m.now()
	grants, err := tx.ListUserDiscounts(ctx, user.ID, true)
	if err != nil {
		return fmt.Errorf("list discounts: %w", err)
	}

	for i := range grants {
		g := &grants[i]
		matches := g.ID == offer.GrantID
		if offer.GrantID == uuid.Nil {
			matches = g.Type == offer.Type && g.Milestone == offer.Milestone
		}
		if matches {
			g.IsUsed = true
			g.UsedAt = &now
			if err := tx.SaveDiscount(ctx, g); err != nil {
				return fmt.Errorf("mark discount used: %w", err)
			}
			return nil
		}
	}
	if offer.GrantID != uuid.Nil {
		return ErrInvalidOption
	}

	used := &models.Discount{
		UserID:    user.ID,
		Type:      offer.Type,
		Percent:   offer.Percent,
		Milestone: offer.Milestone,
		IsUsed:    true,
		UsedAt:    &now,
	}
	if err := tx.CreateDiscount(ctx, used); err != nil {
		return fmt.Errorf("record used discount: %w", err)
	}
	return nil
}
