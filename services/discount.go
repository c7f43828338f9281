package services

import (
	"fmt"
	"strings"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountOffer is one discount a client may apply to a booking.
type DiscountOffer struct {
	Key       string
	Type      string
	Percent   int
	Milestone int
	// GrantID points at the stored Discount backing the offer, if any.
	GrantID uuid.UUID
}

type DiscountRules struct {
	loyalty config.LoyaltyConfig
}

func NewDiscountRules(loyalty config.LoyaltyConfig) DiscountRules {
	return DiscountRules{loyalty: loyalty}
}

// Eligible computes the offers a user qualifies for at now. Every milestone already
// reached is returned, not only the highest one, and used grants are not filtered out.
// The birthday window compares days of the year and does not wrap around New Year.
// A Feb 29 birthday falls on Feb 28 in common years.
func (r DiscountRules) Eligible(user *models.User, now time.Time) []DiscountOffer {
	var offers []DiscountOffer

	if user.VisitsCount == 0 {
		offers = append(offers, DiscountOffer{
			Key:     models.DiscountFirstVisit,
			Type:    models.DiscountFirstVisit,
			Percent: r.loyalty.FirstVisitPercent,
		})
	}

	for _, m := range r.loyalty.Milestones {
		if user.VisitsCount >= m.Visits {
			offers = append(offers, DiscountOffer{
				Key:       fmt.Sprintf("%s_%d", models.DiscountMilestone, m.Visits),
				Type:      models.DiscountMilestone,
				Percent:   m.Percent,
				Milestone: m.Visits,
			})
		}
	}

	if user.Birthday != nil {
		month, day := user.Birthday.Month(), user.Birthday.Day()
		if month == time.February && day == 29 && !isLeap(now.Year()) {
			day = 28
		}
		birthday := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
		if abs(birthday.YearDay()-now.YearDay()) <= r.loyalty.BirthdayWindow {
			offers = append(offers, DiscountOffer{
				Key:     models.DiscountBirthday,
				Type:    models.DiscountBirthday,
				Percent: r.loyalty.BirthdayPercent,
			})
		}
	}

	return offers
}

// GrantOffers turns unused referral grants into bookable offers. Milestone grants are
// already covered by Eligible.
func GrantOffers(grants []models.Discount) []DiscountOffer {
	var offers []DiscountOffer
	for _, g := range grants {
		if g.IsUsed || g.Type != models.DiscountReferral {
			continue
		}
		offers = append(offers, DiscountOffer{
			Key:     models.DiscountReferral + "_" + g.ID.String(),
			Type:    models.DiscountReferral,
			Percent: g.Percent,
			GrantID: g.ID,
		})
	}
	return offers
}

// MilestonesCrossed returns the milestones reached by going from before to after visits.
func (r DiscountRules) MilestonesCrossed(before, after int) []config.Milestone {
	var crossed []config.Milestone
	for _, m := range r.loyalty.Milestones {
		if before < m.Visits && m.Visits <= after {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

func FindOffer(offers []DiscountOffer, key string) (DiscountOffer, bool) {
	for _, o := range offers {
		if o.Key == key {
			return o, true
		}
	}
	return DiscountOffer{}, false
}

// FinalPrice applies percent to price and rounds down to a whole unit.
func FinalPrice(price int64, percent int) int64 {
	if percent <= 0 {
		return price
	}
	if percent >= 100 {
		return 0
	}
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(price).Mul(factor).Floor().IntPart()
}

// DiscountLabel is the human name of a discount type.
func DiscountLabel(offer DiscountOffer) string {
	switch offer.Type {
	case models.DiscountFirstVisit:
		return "Скидка на первый визит"
	case models.DiscountReferral:
		return "Скидка за приглашение"
	case models.DiscountBirthday:
		return "Скидка имениннику"
	case models.DiscountMilestone:
		return fmt.Sprintf("Скидка за %d визитов", offer.Milestone)
	default:
		return strings.ReplaceAll(offer.Type, "_", " ")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
