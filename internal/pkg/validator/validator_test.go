package validator

import (
	"errors"
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

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
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
		{Field: "workflow_name", Message: "is required"},
		{Field: "steps", Message: "must be at least 1"},
	}
	got := errs.Error()
	want := "workflow_name: is required; steps: must be at least 1"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "workflow_name", Message: "is required"},
		{Field: "steps", Message: "must be at least 1"},
	}
	got := errs.ToMap()
	want := map[string]string{"workflow_name": "is required", "steps": "must be at least 1"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

type structSample struct {
	Name  string        `json:"name" validate:"required"`
	Mode  string        `json:"mode" validate:"omitempty,oneof=components simple"`
	Steps []structChild `json:"steps" validate:"min=1,dive"`
}

type structChild struct {
	Role string `json:"role" validate:"required"`
}

func TestStruct(t *testing.T) {
	ok := structSample{Name: "x", Mode: "simple", Steps: []structChild{{Role: "HR Manager"}}}
	if err := Struct(ok); err != nil {
		t.Fatalf("Struct(valid) = %v, want nil", err)
	}

	bad := structSample{Mode: "other", Steps: []structChild{{}}}
	err := Struct(bad)

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Struct(invalid) error type = %T, want ValidationErrors", err)
	}
	got := errs.ToMap()
	if got["name"] != "is required" {
		t.Errorf("name message = %q, want %q", got["name"], "is required")
	}
	if got["mode"] != "must be one of [components simple]" {
		t.Errorf("mode message = %q", got["mode"])
	}
	if got["steps[0].role"] != "is required" {
		t.Errorf("steps[0].role message = %q", got["steps[0].role"])
	}
}
