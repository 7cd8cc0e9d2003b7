package pagination

import "testing"

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cfg := LimitConfig{Default: 50, Max: 200}
	cases := []struct {
		name  string
		value int
		want  int
	}{
		{"zero uses default", 0, 50},
		{"negative uses default", -3, 50},
		{"within bounds", 25, 25},
		{"above max clamps", 900, 200},
		{"exactly max", 200, 200},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.value, cfg); got != tc.want {
			t.Fatalf("%s: limit = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestClampLimitWithoutConfig(t *testing.T) {
	t.Parallel()

	if got := ClampLimit(0, LimitConfig{}); got != 1 {
		t.Fatalf("limit = %d, want 1", got)
	}
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	order, err := ParseOrder("", OrderDesc)
	if err != nil {
		t.Fatalf("parse empty order: %v", err)
	}
	if order != OrderDesc {
		t.Fatalf("order = %q, want %q", order, OrderDesc)
	}

	order, err = ParseOrder("asc", OrderDesc)
	if err != nil {
		t.Fatalf("parse asc: %v", err)
	}
	if order != OrderAsc {
		t.Fatalf("order = %q, want %q", order, OrderAsc)
	}

	if _, err := ParseOrder("sideways", OrderDesc); err == nil {
		t.Fatal("expected invalid order error")
	}
}
