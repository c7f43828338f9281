package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+79263739044", true},
		{"+7 (926) 373-90-44", true},
		{"89263739044", true},
		{"12345", false},
		{"+0123456789", false},
		{"phone", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := ValidatePhone(tt.phone); got != tt.want {
				t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestFormatRub(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0 ₽"},
		{900, "900 ₽"},
		{1500, "1 500 ₽"},
		{1234567, "1 234 567 ₽"},
		{-2500, "-2 500 ₽"},
	}

	for _, tt := range tests {
		if got := FormatRub(tt.amount); got != tt.want {
			t.Errorf("FormatRub(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestDates(t *testing.T) {
	d, err := ParseDate("20.10.2025", time.UTC)
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got := FormatDay(d); got != "Пн 20.10" {
		t.Errorf("FormatDay() = %q, want Пн 20.10", got)
	}
	if got := DaysBetween(d.Add(23*time.Hour), d.AddDate(0, 0, 3)); got != 3 {
		t.Errorf("DaysBetween() = %d, want 3", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"

	valid, err := GenerateToken(secret, 1000, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	expired, _ := GenerateToken(secret, 1000, -time.Hour)
	foreign, _ := GenerateToken("other-secret", 1000, time.Hour)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"bearer token", "Bearer " + valid, "", http.StatusOK},
		{"cookie token", "", valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
				if AdminID(c) != 1000 {
					t.Errorf("AdminID() = %d, want 1000", AdminID(c))
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGenerateTokenWithoutSecret(t *testing.T) {
	if _, err := GenerateToken("", 1, time.Hour); err != ErrMissingSecret {
		t.Errorf("GenerateToken() error = %v, want ErrMissingSecret", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) || CheckPasswordHash("wrong", hash) {
		t.Error("CheckPasswordHash() does not match HashPassword()")
	}
}
