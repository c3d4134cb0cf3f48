package model

import (
	"testing"
	"time"
)

const testSentFormat = "2006-01-02 15:04"

func TestStatusFormatAndParse(t *testing.T) {
	loc := time.UTC
	sentAt := time.Date(2026, 10, 18, 13, 55, 0, 0, loc)

	tests := []struct {
		name   string
		status Status
		stored string
	}{
		{name: "pending", status: Pending(), stored: ""},
		{name: "sent", status: Sent(sentAt), stored: "2026-10-18 13:55"},
		{name: "cancelled", status: Cancelled(), stored: "Cancelled/Moved"},
		{name: "failed", status: Failed("smtp down"), stored: "Error: smtp down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Format(testSentFormat); got != tt.stored {
				t.Fatalf("Format() = %q, want %q", got, tt.stored)
			}
			parsed := ParseStatus(tt.stored, testSentFormat, loc)
			if parsed.Kind != tt.status.Kind {
				t.Fatalf("ParseStatus kind = %v, want %v", parsed.Kind, tt.status.Kind)
			}
			if got := parsed.Format(testSentFormat); got != tt.stored {
				t.Fatalf("round trip = %q, want %q", got, tt.stored)
			}
		})
	}
}

func TestParseStatusKeepsUnknownMarkerAsSent(t *testing.T) {
	parsed := ParseStatus("sent manually", testSentFormat, time.UTC)
	if parsed.Kind != StatusSent {
		t.Fatalf("kind = %v, want sent", parsed.Kind)
	}
	if parsed.IsPending() {
		t.Fatal("expected terminal status")
	}
	if got := parsed.Format(testSentFormat); got != "sent manually" {
		t.Fatalf("Format() = %q, want raw marker", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "14:00", want: "14:00"},
		{in: " 9:05 ", want: "09:05"},
		{in: "00:00", want: "00:00"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeClock(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeClock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOnDayUsesReferenceDate(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	ref := time.Date(2026, 10, 18, 8, 30, 12, 0, loc)
	got, err := OnDay("14:05", ref)
	if err != nil {
		t.Fatalf("OnDay: %v", err)
	}
	want := time.Date(2026, 10, 18, 14, 5, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("OnDay = %v, want %v", got, want)
	}
}

func TestFirstName(t *testing.T) {
	if got := FirstName("Ada Lovelace"); got != "Ada" {
		t.Fatalf("FirstName = %q, want %q", got, "Ada")
	}
	if got := FirstName(""); got != "" {
		t.Fatalf("FirstName(\"\") = %q, want empty", got)
	}
}

func TestDedupKeyNormalizesClock(t *testing.T) {
	a := Reminder{RecipientEmail: " a@x.com", ScheduledTime: "9:00"}
	b := Reminder{RecipientEmail: "a@x.com", ScheduledTime: "09:00 "}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("dedup keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}
}
