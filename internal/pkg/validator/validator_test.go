package validator

import (
	"math"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-03-15", "2023-12-31", "2024-02-29"}
	invalid := []string{"2024-13-01", "2023-02-29", "15-03-2024", "2024/03/15", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidCoordinates(t *testing.T) {
	latCases := []struct {
		input float64
		want  bool
	}{
		{0, true},
		{-90, true},
		{90, true},
		{90.0001, false},
		{-91, false},
		{math.NaN(), false},
	}
	for _, c := range latCases {
		if got := IsValidLatitude(c.input); got != c.want {
			t.Errorf("IsValidLatitude(%v) = %v, want %v", c.input, got, c.want)
		}
	}

	lonCases := []struct {
		input float64
		want  bool
	}{
		{0, true},
		{-180, true},
		{180, true},
		{180.5, false},
		{-200, false},
		{math.NaN(), false},
	}
	for _, c := range lonCases {
		if got := IsValidLongitude(c.input); got != c.want {
			t.Errorf("IsValidLongitude(%v) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"today", "week", "month"}
	if !IsInSlice("week", slice) {
		t.Error("IsInSlice(week) = false, want true")
	}
	if IsInSlice("year", slice) {
		t.Error("IsInSlice(year) = true, want false")
	}
}

func TestIsValidDateTime(t *testing.T) {
	if _, ok := IsValidDateTime("2024-01-15T10:30:00Z"); !ok {
		t.Error("expected RFC3339 timestamp to be valid")
	}
	if _, ok := IsValidDateTime("2024-01-15T10:30:00.123456+07:00"); !ok {
		t.Error("expected RFC3339Nano timestamp to be valid")
	}
	if _, ok := IsValidDateTime("2024-01-15 10:30"); ok {
		t.Error("expected non-ISO timestamp to be invalid")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "longitude", Message: "longitude must be between -180 and 180"},
	}
	want := "latitude: latitude must be between -90 and 90; longitude: longitude must be between -180 and 180"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "email is required"},
	}
	m := errs.ToMap()
	if m["email"] != "email is required" {
		t.Errorf("ToMap()[email] = %q", m["email"])
	}
}
