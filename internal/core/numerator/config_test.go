package numerator

import (
	"testing"
	"time"
)

var day = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestDayPrefix(t *testing.T) {
	cfg := DefaultConfig("RK")
	if got := cfg.DayPrefix(day); got != "RK20260115" {
		t.Errorf("DayPrefix = %q, want RK20260115", got)
	}
}

func TestFormat(t *testing.T) {
	cfg := DefaultConfig("CK")
	if got := cfg.Format(day, 7); got != "CK202601150007" {
		t.Errorf("Format = %q, want CK202601150007", got)
	}
}

func TestNext(t *testing.T) {
	cfg := DefaultConfig("RK")

	tests := []struct {
		name    string
		current string
		want    string
		wantErr bool
	}{
		{name: "first of the day", current: "", want: "RK202601150001"},
		{name: "increment", current: "RK202601150007", want: "RK202601150008"},
		{name: "carries across tens", current: "RK202601150099", want: "RK202601150100"},
		{name: "wrong prefix", current: "CK202601150007", wantErr: true},
		{name: "short sequence", current: "RK20260115007", wantErr: true},
		{name: "non-numeric sequence", current: "RK20260115000x", wantErr: true},
		{name: "sequence exhausted", current: "RK202601159999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.Next(day, tt.current)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Next(%q) expected error, got %q", tt.current, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Next(%q) failed: %v", tt.current, err)
			}
			if got != tt.want {
				t.Errorf("Next(%q) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}
