package services

import (
	"testing"
	"time"

	"nailstudio-bot/models"

	"github.com/google/uuid"
)

func offerKeys(offers []DiscountOffer) []string {
	keys := make([]string, 0, len(offers))
	for _, o := range offers {
		keys = append(keys, o.Key)
	}
	return keys
}

func sameKeys(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDiscountRulesEligible(t *testing.T) {
	rules := NewDiscountRules(testConfig().Loyalty)
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	birthday := func(month time.Month, day int) *time.Time {
		b := time.Date(1990, month, day, 0, 0, 0, 0, time.UTC)
		return &b
	}

	tests := []struct {
		name string
		user models.User
		want []string
	}{
		{
			name: "first visit",
			user: models.User{VisitsCount: 0},
			want: []string{"first_visit"},
		},
		{
			name: "no discount between milestones",
			user: models.User{VisitsCount: 3},
			want: []string{},
		},
		{
			name: "every reached milestone is offered",
			user: models.User{VisitsCount: 12},
			want: []string{"milestone_5", "milestone_10"},
		},
		{
			name: "birthday inside the window",
			user: models.User{VisitsCount: 1, Birthday: birthday(time.June, 20)},
			want: []string{"birthday"},
		},
		{
			name: "birthday on the window edge",
			user: models.User{VisitsCount: 1, Birthday: birthday(time.May, 26)},
			want: []string{"birthday"},
		},
		{
			name: "birthday outside the window",
			user: models.User{VisitsCount: 1, Birthday: birthday(time.August, 1)},
			want: []string{},
		},
		{
			name: "first visit and birthday together",
			user: models.User{VisitsCount: 0, Birthday: birthday(time.June, 10)},
			want: []string{"first_visit", "birthday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := offerKeys(rules.Eligible(&tt.user, now))
			if !sameKeys(got, tt.want) {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscountRulesBirthdayWindowDoesNotWrap(t *testing.T) {
	rules := NewDiscountRules(testConfig().Loyalty)
	now := time.Date(2025, time.December, 28, 12, 0, 0, 0, time.UTC)
	b := time.Date(1990, time.January, 3, 0, 0, 0, 0, time.UTC)
	user := models.User{VisitsCount: 1, Birthday: &b}

	if got := rules.Eligible(&user, now); len(got) != 0 {
		t.Errorf("Eligible() = %v, want no offers across New Year", offerKeys(got))
	}
}

func TestDiscountRulesLeapDayBirthday(t *testing.T) {
	rules := NewDiscountRules(testConfig().Loyalty)
	b := time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)
	user := models.User{VisitsCount: 1, Birthday: &b}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"common year, edge of the window", time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC), true},
		{"common year, one day past the window", time.Date(2026, time.March, 16, 12, 0, 0, 0, time.UTC), false},
		{"common year, window before the birthday", time.Date(2026, time.February, 13, 12, 0, 0, 0, time.UTC), true},
		{"leap year, one day past the window", time.Date(2028, time.March, 16, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := FindOffer(rules.Eligible(&user, tt.now), models.DiscountBirthday)
			if got != tt.want {
				t.Errorf("birthday offered on %s = %v, want %v", tt.now.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name    string
		price   int64
		percent int
		want    int64
	}{
		{"no discount", 1500, 0, 1500},
		{"twenty percent", 1500, 20, 1200},
		{"rounds down", 1499, 15, 1274},
		{"negative percent ignored", 2500, -5, 2500},
		{"full discount", 2500, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FinalPrice(tt.price, tt.percent); got != tt.want {
				t.Errorf("FinalPrice(%d, %d) = %d, want %d", tt.price, tt.percent, got, tt.want)
			}
		})
	}
}

func TestMilestonesCrossed(t *testing.T) {
	rules := NewDiscountRules(testConfig().Loyalty)

	tests := []struct {
		name          string
		before, after int
		want          []int
	}{
		{"below the first", 3, 4, nil},
		{"reaches the first", 4, 5, []int{5}},
		{"already past", 5, 6, nil},
		{"jumps two", 4, 10, []int{5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.MilestonesCrossed(tt.before, tt.after)
			if len(got) != len(tt.want) {
				t.Fatalf("MilestonesCrossed(%d, %d) = %v, want %v", tt.before, tt.after, got, tt.want)
			}
			for i, m := range got {
				if m.Visits != tt.want[i] {
					t.Errorf("milestone %d = %d, want %d", i, m.Visits, tt.want[i])
				}
			}
		})
	}
}

func TestGrantOffers(t *testing.T) {
	unused := models.Discount{ID: uuid.New(), Type: models.DiscountReferral, Percent: 15}
	grants := []models.Discount{
		unused,
		{ID: uuid.New(), Type: models.DiscountReferral, Percent: 15, IsUsed: true},
		{ID: uuid.New(), Type: models.DiscountMilestone, Percent: 10, Milestone: 5},
	}

	offers := GrantOffers(grants)
	if len(offers) != 1 {
		t.Fatalf("GrantOffers() returned %d offers, want 1", len(offers))
	}
	if offers[0].GrantID != unused.ID || offers[0].Percent != 15 {
		t.Errorf("GrantOffers()[0] = %+v, want grant %s at 15%%", offers[0], unused.ID)
	}
	if _, ok := FindOffer(offers, "referral_"+unused.ID.String()); !ok {
		t.Error("FindOffer() did not find the referral offer by key")
	}
}
