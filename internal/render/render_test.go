package render_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/holonet/internal/host/local"
	"github.com/dshills/holonet/internal/render"
)

type fakeLocalizer map[string]string

func (f fakeLocalizer) Localize(key string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return key
}

func (f fakeLocalizer) Format(key string, args ...any) string { return f.Localize(key) }

func newHost(t *testing.T) *local.Host {
	t.Helper()
	h := local.New()
	l := fakeLocalizer{"holonet.controls.shop": "Shop"}
	if err := render.Register(h, l); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return h
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    any
		op   string
		b    any
		want bool
	}{
		{"equal ints", 2, "==", 2, true},
		{"not equal ints", 2, "!=", 2, false},
		{"loose number string", 2, "==", "2", true},
		{"float and int", 2.0, "==", 2, true},
		{"strings", "rival", "==", "rival", true},
		{"nil equals nil", nil, "==", nil, true},
		{"nil vs zero", nil, "==", 0, false},
		{"greater", 3, ">", 2, true},
		{"less", 3, "<", 2, false},
		{"string order", "a", "<", "b", true},
		{"unordered", []int{1}, ">", 0, false},
		{"nil contains", nil, "contains", "x", false},
		{"contains empty needle", "abc", "contains", "", false},
		{"string contains", "Stormtrooper", "contains", "trooper", true},
		{"slice contains", []string{"minion", "rival"}, "contains", "rival", true},
		{"slice lacks", []any{1, 2}, "contains", 3, false},
		{"slice holds number", []any{1, 2}, "contains", 1, true},
		{"slice number vs string", []any{1}, "contains", "1", false},
		{"slice string vs number", []string{"1"}, "contains", 1, false},
		{"slice bool vs number", []any{true}, "contains", 1, false},
		{"slice float and int", []float64{2}, "contains", 2, true},
		{"map key strict", map[string]int{"1": 1}, "contains", 1, false},
		{"map key", map[string]int{"pilot": 1}, "contains", "pilot", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render.Compare(tt.a, tt.op, tt.b)
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%v %s %v) = %v, want %v", tt.a, tt.op, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_UnknownOperator(t *testing.T) {
	_, err := render.Compare(1, "^", 1)
	var opErr *render.UnknownOperatorError
	if !errors.As(err, &opErr) || opErr.Token != "^" {
		t.Fatalf("err = %v, want UnknownOperatorError for ^", err)
	}
}

func TestParseOperator_RoundTrip(t *testing.T) {
	for _, op := range []render.Operator{render.OpEq, render.OpGt, render.OpLt, render.OpNeq, render.OpContains} {
		got, err := render.ParseOperator(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOperator(%q) = %v, %v", op.String(), got, err)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{0, false},
		{0.0, false},
		{"", false},
		{true, true},
		{3, true},
		{"0", true},
		{[]int{}, true},
		{map[string]int(nil), false},
	}
	for _, tt := range tests {
		if got := render.Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestRepeat(t *testing.T) {
	body := func(i int) string { return string(rune('0' + i)) }
	fallbackCalls := 0
	fallback := func() string {
		fallbackCalls++
		return "none"
	}

	if got := render.Repeat(0, body, fallback); got != "none" || fallbackCalls != 1 {
		t.Errorf("Repeat(0) = %q after %d fallbacks", got, fallbackCalls)
	}
	if got := render.Repeat(3, body, fallback); got != "012" {
		t.Errorf("Repeat(3) = %q, want 012", got)
	}
	if got := render.Repeat("2", body, fallback); got != "01" {
		t.Errorf(`Repeat("2") = %q, want 01`, got)
	}
	if fallbackCalls != 1 {
		t.Errorf("fallback ran %d times, want 1", fallbackCalls)
	}
}

func TestIffHelper(t *testing.T) {
	h := newHost(t)
	tests := []struct {
		name string
		tpl  string
		data map[string]any
		want string
	}{
		{"equal", `{{#iff 2 "==" 2}}then{{else}}else{{/iff}}`, map[string]any{}, "then"},
		{"not equal", `{{#iff 2 "!=" 2}}then{{else}}else{{/iff}}`, map[string]any{}, "else"},
		{"nil contains", `{{#iff missing "contains" "x"}}then{{else}}else{{/iff}}`, map[string]any{}, "else"},
		{"context values", `{{#iff type "==" "minion"}}group{{/iff}}`, map[string]any{"type": "minion"}, "group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Render(tt.tpl, tt.data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIffHelper_UnknownOperatorFailsRender(t *testing.T) {
	h := newHost(t)
	out, err := h.Render(`{{#iff 1 "^" 1}}then{{else}}else{{/iff}}`, map[string]any{})
	if err == nil {
		t.Fatalf("expected an error, rendered %q", out)
	}
	if !strings.Contains(err.Error(), "unknown operator ^") {
		t.Errorf("err = %v", err)
	}
}

func TestTimesHelper(t *testing.T) {
	h := newHost(t)

	got, err := h.Render(`{{#times n}}[{{@index}}]{{else}}empty{{/times}}`, map[string]any{"n": 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != "[0][1][2]" {
		t.Errorf("times 3 = %q", got)
	}

	got, err = h.Render(`{{#times n}}[{{@index}}]{{else}}empty{{/times}}`, map[string]any{"n": 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != "empty" {
		t.Errorf("times 0 = %q, want a single fallback", got)
	}
}

func TestLocalizeHelper(t *testing.T) {
	h := newHost(t)
	got, err := h.Render(`{{localize "holonet.controls.shop"}}|{{localize "missing.key"}}`, map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Shop|missing.key" {
		t.Errorf("Render = %q", got)
	}
}

func TestRegister_RejectedByHost(t *testing.T) {
	h := local.New()
	if err := render.Register(h, fakeLocalizer{}); err != nil {
		t.Fatal(err)
	}
	err := render.Register(h, fakeLocalizer{})
	if !errors.Is(err, local.ErrDuplicateHelper) {
		t.Errorf("err = %v, want ErrDuplicateHelper", err)
	}
}
