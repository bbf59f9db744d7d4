package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "srv-1", 10, "srv-1"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "capacity probe failed", 10, "capacit..."},
		{"tiny maxLen collapses to ellipsis", "hello", 3, "..."},
		{"zero maxLen collapses to ellipsis", "hello", 0, "..."},
		{"empty string unchanged", "", 10, ""},
		{"runes counted not bytes", "日本語テスト", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	t.Run("plain string truncated", func(t *testing.T) {
		got := TruncateANSI("manual refund required for txn-42", 10)
		if got != "manual ..." {
			t.Errorf("TruncateANSI() = %q, want %q", got, "manual ...")
		}
	})

	t.Run("short styled string unchanged", func(t *testing.T) {
		in := warn.Render("ok")
		if got := TruncateANSI(in, 10); got != in {
			t.Errorf("TruncateANSI() modified a string within the width")
		}
	})

	t.Run("styled string cut to visual width", func(t *testing.T) {
		got := TruncateANSI(warn.Render("payment gateway unreachable"), 12)
		if w := lipgloss.Width(got); w > 12 {
			t.Errorf("visual width = %d, want <= 12", w)
		}
	})

	t.Run("wide characters measured by columns", func(t *testing.T) {
		got := TruncateANSI("日本語テスト", 8)
		if w := lipgloss.Width(got); w > 8 {
			t.Errorf("visual width = %d, want <= 8", w)
		}
	})

	t.Run("tiny width collapses to ellipsis", func(t *testing.T) {
		if got := TruncateANSI("hello", 3); got != "..." {
			t.Errorf("TruncateANSI() = %q, want ...", got)
		}
	})
}
