package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%s) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if th.Name != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, th.Name)
		}
		if th.Heart == "" || th.Text == "" || th.Surface == "" {
			t.Fatalf("GetTheme(%s) has empty colors: %#v", name, th)
		}
	}

	if unknown := GetTheme("Unknown"); unknown.Name != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", unknown.Name)
	}
}

func TestTheme_ButtonBorder(t *testing.T) {
	th := GetTheme("Kanagawa")
	tests := []struct {
		enabled, favourited bool
		want                string
	}{
		{true, false, th.Border},
		{true, true, th.Heart},
		{false, true, th.Faint},
		{false, false, th.Faint},
	}
	for _, tt := range tests {
		got := th.Button(tt.enabled, tt.favourited).GetBorderTopForeground()
		if got != lipgloss.Color(tt.want) {
			t.Fatalf("Button(%v, %v) border = %v, want %v", tt.enabled, tt.favourited, got, tt.want)
		}
	}
}
