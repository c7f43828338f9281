package config

import "github.com/spf13/viper"

// Service is one bookable item of the salon menu.
type Service struct {
	ID          string
	Name        string
	Emoji       string
	Price       int64
	Duration    int // in minutes
	Description string
}

var DefaultTimeSlots = []string{
	"10:00", "11:00", "12:00", "13:00", "14:00", "15:00",
	"16:00", "17:00", "18:00", "19:00", "20:00",
}

// Gallery categories follow the service ids.
var GalleryCategories = []string{"manicure", "pedicure", "combo"}

func DefaultServices(v *viper.Viper) []Service {
	v.SetDefault("PRICE_MANICURE", 1500)
	v.SetDefault("PRICE_PEDICURE", 1500)
	v.SetDefault("PRICE_COMBO", 2500)

	return []Service{
		{ID: "manicure", Name: "Маникюр", Emoji: "💅", Price: v.GetInt64("PRICE_MANICURE"), Duration: 90},
		{ID: "pedicure", Name: "Педикюр", Emoji: "👣", Price: v.GetInt64("PRICE_PEDICURE"), Duration: 90},
		{ID: "combo", Name: "Комбо", Emoji: "🌟", Price: v.GetInt64("PRICE_COMBO"), Duration: 150, Description: "Маникюр + Педикюр"},
	}
}

// Catalog keeps the services in menu order together with the daily slots.
type Catalog struct {
	Services []Service
	Slots    []string
}

func NewCatalog(services []Service, slots []string) Catalog {
	if len(slots) == 0 {
		slots = DefaultTimeSlots
	}
	return Catalog{Services: services, Slots: slots}
}

func (c Catalog) Service(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (c Catalog) HasSlot(slot string) bool {
	for _, s := range c.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ServiceName falls back to the raw id for services removed from the menu.
func (c Catalog) ServiceName(id string) string {
	if s, ok := c.Service(id); ok {
		return s.Name
	}
	return id
}
