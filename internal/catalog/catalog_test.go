package catalog

import (
	"errors"
	"testing"
)

func TestDefaultRegistryOrder(t *testing.T) {
	reg := Default()
	want := []string{
		"books", "words", "diseases", "drugs", "tutorialVideos",
		"staff", "questions", "notifications", "users", "normalRanges", "appLinks",
	}
	all := reg.All()
	if len(all) != len(want) {
		t.Fatalf("collection count = %d, want %d", len(all), len(want))
	}
	for i, d := range all {
		if d.Key != want[i] {
			t.Fatalf("collection %d = %s, want %s", i, d.Key, want[i])
		}
	}
}

func TestDescribeUnknown(t *testing.T) {
	reg := Default()
	if _, err := reg.Describe("recipes"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("Describe(recipes) err = %v, want ErrUnknownCollection", err)
	}
	if reg.Has("recipes") {
		t.Fatal("Has(recipes) = true")
	}
}

func TestRequiredSubsetOfFields(t *testing.T) {
	for _, d := range Default().All() {
		declared := make(map[string]struct{}, len(d.Fields))
		for _, f := range d.Fields {
			declared[f] = struct{}{}
		}
		for _, f := range d.Required {
			if _, ok := declared[f]; !ok {
				t.Errorf("%s: required field %q not declared", d.Key, f)
			}
		}
		if len(d.Fields) == 0 {
			t.Errorf("%s: no fields declared", d.Key)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	desc, err := Default().Describe("drugs")
	if err != nil {
		t.Fatal(err)
	}

	err = Validate(desc, map[string]string{"name": "Ivermectin", "usage": "   "})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError", err)
	}
	if missing.Field != "usage" {
		t.Fatalf("missing field = %s, want usage", missing.Field)
	}

	// Optional fields may be absent; unknown extras are ignored.
	data := map[string]string{
		"name":  "Ivermectin",
		"usage": "antiparasitic",
		"bogus": "ignored",
	}
	if err := Validate(desc, data); err != nil {
		t.Fatalf("valid data rejected: %v", err)
	}
}

func TestValidateNumericRange(t *testing.T) {
	desc, err := Default().Describe("normalRanges")
	if err != nil {
		t.Fatal(err)
	}
	base := func(min, max string) map[string]string {
		return map[string]string{
			"name":     "Heart rate",
			"unit":     "bpm",
			"minValue": min,
			"maxValue": max,
		}
	}

	cases := []struct {
		name     string
		min, max string
		want     error
	}{
		{"valid", "60", "120", nil},
		{"valid floats", "7.35", "7.45", nil},
		{"min not numeric", "low", "120", ErrInvalidNumber},
		{"max not numeric", "60", "high", ErrInvalidNumber},
		{"equal", "60", "60", ErrInvalidRange},
		{"inverted", "120", "60", ErrInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(desc, base(tc.min, tc.max))
			if tc.want == nil {
				if err != nil {
					t.Fatalf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDisplayNameFallback(t *testing.T) {
	desc, err := Default().Describe("questions")
	if err != nil {
		t.Fatal(err)
	}

	if got := desc.DisplayName(map[string]any{"text": "Is grass ok?", "userName": "amed"}); got != "Is grass ok?" {
		t.Fatalf("DisplayName = %q, want first display field", got)
	}
	if got := desc.DisplayName(map[string]any{"text": "  ", "userName": "amed"}); got != "amed" {
		t.Fatalf("DisplayName = %q, want fallback display field", got)
	}
	if got := desc.DisplayName(map[string]any{"id": int64(7)}); got != "Item 7" {
		t.Fatalf("DisplayName = %q, want Item 7", got)
	}
	if got := desc.DisplayName(map[string]any{"id": float64(7)}); got != "Item 7" {
		t.Fatalf("DisplayName = %q, want Item 7 for float id", got)
	}
	if got := desc.DisplayName(map[string]any{}); got != "Item N/A" {
		t.Fatalf("DisplayName = %q, want Item N/A", got)
	}
}
