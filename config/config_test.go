package config

import (
	"testing"
)

func TestParseMilestones(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Milestone
		wantErr bool
	}{
		{
			name: "sorted by visits",
			raw:  "10:15, 5:10 ,20:20",
			want: []Milestone{{5, 10}, {10, 15}, {20, 20}},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{name: "missing percent", raw: "5", wantErr: true},
		{name: "zero visits", raw: "0:10", wantErr: true},
		{name: "percent above 100", raw: "5:120", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMilestones(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMilestones(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseMilestones(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("milestone %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAdminConfigIsAdmin(t *testing.T) {
	admins := AdminConfig{IDs: []int64{100, 200}}
	if !admins.IsAdmin(200) {
		t.Error("IsAdmin(200) = false")
	}
	if admins.IsAdmin(300) {
		t.Error("IsAdmin(300) = true")
	}
	if (AdminConfig{}).IsAdmin(0) {
		t.Error("empty admin list granted access")
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("123, 456,,789")
	if err != nil {
		t.Fatalf("parseIDs() error = %v", err)
	}
	if len(ids) != 3 || ids[2] != 789 {
		t.Errorf("parseIDs() = %v", ids)
	}
	if _, err := parseIDs("12a"); err == nil {
		t.Error("parseIDs() accepted a non-numeric id")
	}
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog([]Service{{ID: "manicure", Name: "Маникюр", Price: 1500}}, nil)

	if len(catalog.Slots) != len(DefaultTimeSlots) {
		t.Errorf("slots = %v, want the defaults", catalog.Slots)
	}
	if s, ok := catalog.Service("manicure"); !ok || s.Price != 1500 {
		t.Errorf("Service(manicure) = %+v, %v", s, ok)
	}
	if _, ok := catalog.Service("haircut"); ok {
		t.Error("Service(haircut) found")
	}
	if !catalog.HasSlot("10:00") || catalog.HasSlot("09:00") {
		t.Error("HasSlot() disagrees with the default slots")
	}
	if got := catalog.ServiceName("removed"); got != "removed" {
		t.Errorf("ServiceName(removed) = %q", got)
	}
}
