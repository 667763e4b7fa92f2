package validator

import (
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

func TestIsBlank(t *testing.T) {
	empty, spaces, value := "", "  ", "x"
	if !IsBlank(nil) || !IsBlank(&empty) || !IsBlank(&spaces) {
		t.Errorf("IsBlank should be true for nil, empty and whitespace")
	}
	if IsBlank(&value) {
		t.Errorf("IsBlank(%q) = true, want false", value)
	}
}

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-05", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "05-01-2024", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidAadhaar(t *testing.T) {
	valid := []string{"123412341234", "1234 1234 1234"}
	invalid := []string{"12341234123", "1234123412345", "abcd12341234", ""}
	for _, id := range valid {
		if !IsValidAadhaar(id) {
			t.Errorf("IsValidAadhaar(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidAadhaar(id) {
			t.Errorf("IsValidAadhaar(%q) = true, want false", id)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "09876543210", "98765-43210", "98765 43210"}
	invalid := []string{"1234567890", "987654321", "98765432101", "98765abcde", ""}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestIsValidUPI(t *testing.T) {
	valid := []string{"ravi.k@okaxis", "9876543210@ybl", "site_helper-1@paytm"}
	invalid := []string{"ravi", "@okaxis", "ravi@", "ravi@@ybl", "ravi@1bank"}
	for _, h := range valid {
		if !IsValidUPI(h) {
			t.Errorf("IsValidUPI(%q) = false, want true", h)
		}
	}
	for _, h := range invalid {
		if IsValidUPI(h) {
			t.Errorf("IsValidUPI(%q) = true, want false", h)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "required"},
		{Field: "daily_wage", Message: "must be positive"},
	}
	got := errs.Error()
	want := "name: required; daily_wage: must be positive"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("status", "invalid")
	if errs.Err() == nil {
		t.Errorf("ValidationErrors.Err() should not be nil after Add")
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "required"},
		{Field: "phone_number", Message: "invalid"},
	}
	got := errs.ToMap()
	want := map[string]string{"name": "required", "phone_number": "invalid"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
