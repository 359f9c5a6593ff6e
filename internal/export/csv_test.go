package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestWriteBookings(t *testing.T) {
	at := time.Date(2026, 7, 15, 17, 4, 5, 0, time.UTC)
	seats := []model.BookedSeat{
		{
			Seat: model.Seat{
				ID: "s1", Row: "A", Number: 7, Section: model.SectionLeft, Status: model.SeatBooked,
				BookedBy: ptr("Max Muster"), BookedAt: &at, TicketNumber: ptr("T-1"), BookingID: ptr("b1"),
			},
			SellerFirstName: "Erika",
			SellerLastName:  "Verkauf",
		},
		{
			Seat: model.Seat{
				ID: "s2", Row: "AA", Number: 1, Section: model.SectionRang, Status: model.SeatBooked,
				BookedBy: ptr(`Anna "Ann", Beispiel`), TicketNumber: ptr("Freikarte"),
			},
		},
	}
	berlin := time.FixedZone("CEST", 2*60*60)

	var buf bytes.Buffer
	if err := WriteBookings(&buf, seats, berlin); err != nil {
		t.Fatalf("WriteBookings: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	want := [][]string{
		Header,
		{"LEFT A7", "Max Muster", "Erika Verkauf", "T-1", "15.07.2026, 19:04:05"},
		{"RANG AA1", `Anna "Ann", Beispiel`, "N/A", "Freikarte", "N/A"},
	}
	for i := range want {
		for j := range want[i] {
			if records[i][j] != want[i][j] {
				t.Errorf("record %d field %d = %q, want %q", i, j, records[i][j], want[i][j])
			}
		}
	}
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBookings(&buf, nil, nil); err != nil {
		t.Fatalf("WriteBookings: %v", err)
	}
	if got := buf.String(); got != "Platz,Kundenname,Verkäufer,Ticketnummer,Gebucht am\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 3, 20, 23, 30, 0, 0, time.UTC)
	cases := map[string]string{
		"Summer Music Festival":  "buchungen-summer-music-festival-2026-03-20.csv",
		"Comedy Night: Special!": "buchungen-comedy-night-special-2026-03-20.csv",
		"   ":                    "buchungen-event-2026-03-20.csv",
	}
	for title, want := range cases {
		if got := FileName(title, now); got != want {
			t.Errorf("FileName(%q) = %q, want %q", title, got, want)
		}
	}
}
