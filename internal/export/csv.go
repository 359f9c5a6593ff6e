// Package export renders the booked seats of an event as CSV for the box
// office.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// Header is the first CSV record.
var Header = []string{"Platz", "Kundenname", "Verkäufer", "Ticketnummer", "Gebucht am"}

const (
	missing    = "N/A"
	dateLayout = "02.01.2006, 15:04:05"
)

// WriteBookings writes Header followed by one record per seat.  Times are
// rendered in loc (UTC when nil).
func WriteBookings(w io.Writer, seats []model.BookedSeat, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, s := range seats {
		if err := cw.Write(record(s, loc)); err != nil {
			return fmt.Errorf("export: write seat %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

func record(s model.BookedSeat, loc *time.Location) []string {
	bookedAt := missing
	if s.BookedAt != nil {
		bookedAt = s.BookedAt.In(loc).Format(dateLayout)
	}
	return []string{
		s.Label(),
		orMissing(s.BookedBy),
		orMissing(sellerName(s)),
		orMissing(s.TicketNumber),
		bookedAt,
	}
}

func sellerName(s model.BookedSeat) *string {
	name := strings.TrimSpace(s.SellerFirstName + " " + s.SellerLastName)
	if name == "" {
		return nil
	}
	return &name
}

func orMissing(v *string) string {
	if v == nil || *v == "" {
		return missing
	}
	return *v
}

// FileName returns the download name for an event export, for example
// "buchungen-summer-music-festival-2026-07-15.csv".
func FileName(title string, now time.Time) string {
	s := slug.Make(title)
	if s == "" {
		s = "event"
	}
	return fmt.Sprintf("buchungen-%s-%s.csv", s, now.UTC().Format("2006-01-02"))
}
