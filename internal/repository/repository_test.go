package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/testutil"
)

type fixture struct {
	db       *sql.DB
	tx       *TxManager
	events   *EventRepo
	seats    *SeatRepo
	bookings *BookingRepo
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewTestDB(t)
	return fixture{
		db:       db,
		tx:       NewTxManager(db),
		events:   NewEventRepo(db),
		seats:    NewSeatRepo(db),
		bookings: NewBookingRepo(db),
	}
}

// seedEvent stores an event with rows x cols MAIN seats.
func (f fixture) seedEvent(t *testing.T, rows []string, cols int) (model.Event, []model.Seat) {
	t.Helper()
	ctx := context.Background()
	ev := model.Event{
		ID:         uuid.NewString(),
		Title:      "Test Event",
		Venue:      "Hall",
		Date:       time.Date(2026, 7, 15, 19, 0, 0, 0, time.UTC),
		TotalSeats: len(rows) * cols,
		Layout: model.LayoutConfig{
			Mode:      model.LayoutFlexible,
			RowGroups: []model.RowGroup{{Rows: len(rows), SeatsPerRow: cols, AisleAfterSeat: 1}},
		},
	}
	if err := f.events.Create(ctx, &ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	var seats []model.Seat
	for _, row := range rows {
		for n := 1; n <= cols; n++ {
			seats = append(seats, model.Seat{
				ID: uuid.NewString(), EventID: ev.ID, Row: row, Number: n,
				Section: model.SectionMain, Status: model.SeatAvailable,
			})
		}
	}
	if err := f.seats.CreateBulk(ctx, seats); err != nil {
		t.Fatalf("create seats: %v", err)
	}
	return ev, seats
}

func (f fixture) insertBooking(ctx context.Context, eventID string) (model.Booking, error) {
	b := model.Booking{
		ID: uuid.NewString(), EventID: eventID,
		CustomerFirstName: "Max", CustomerLastName: "Muster",
		SellerFirstName: "Erika", SellerLastName: "Verkauf",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	return b, f.bookings.Create(ctx, &b)
}

func (f fixture) newBooking(t *testing.T, ctx context.Context, eventID string) model.Booking {
	t.Helper()
	b, err := f.insertBooking(ctx, eventID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func claim(seat model.Seat, bookingID, ticket string) model.SeatClaim {
	return model.SeatClaim{
		SeatID: seat.ID, EventID: seat.EventID, BookingID: bookingID,
		BookedBy: "Max Muster", TicketNumber: ticket, BookedAt: time.Now().UTC(),
	}
}

func TestEventRoundTripAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, _ := f.seedEvent(t, []string{"A", "B"}, 3)

	got, err := f.events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Layout.Mode != model.LayoutFlexible || len(got.Layout.RowGroups) != 1 || got.Layout.RowGroups[0].AisleAfterSeat != 1 {
		t.Fatalf("layout not stored: %+v", got.Layout)
	}
	if !got.Date.Equal(ev.Date) {
		t.Fatalf("date = %v, want %v", got.Date, ev.Date)
	}

	list, err := f.events.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].SeatCount != 6 || list[0].BookedCount != 0 {
		t.Fatalf("list = %+v", list)
	}

	if _, err := f.events.GetByID(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
	if err := f.events.Delete(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestListByEventOrdersRowsBeyondZ(t *testing.T) {
	f := newFixture(t)
	ev, _ := f.seedEvent(t, []string{"AA", "B", "Z", "A"}, 2)

	seats, err := f.seats.ListByEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	var order []string
	for _, s := range seats {
		order = append(order, fmt.Sprintf("%s%d", s.Row, s.Number))
	}
	want := "A1 A2 B1 B2 Z1 Z2 AA1 AA2"
	if got := fmt.Sprint(order); got != "["+want+"]" {
		t.Fatalf("order = %s, want [%s]", got, want)
	}
}

func TestBookIfAvailableIsConditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, seats := f.seedEvent(t, []string{"A"}, 2)
	b := f.newBooking(t, ctx, ev.ID)

	ok, err := f.seats.BookIfAvailable(ctx, claim(seats[0], b.ID, "T-1"))
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = f.seats.BookIfAvailable(ctx, claim(seats[0], b.ID, "T-2"))
	if err != nil || ok {
		t.Fatalf("second claim must report false: ok=%v err=%v", ok, err)
	}

	got, err := f.seats.GetByID(ctx, ev.ID, seats[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.SeatBooked || !got.Consistent() || *got.TicketNumber != "T-1" {
		t.Fatalf("seat = %+v", got)
	}
	if _, err := f.seats.GetByID(ctx, "other-event", seats[0].ID); !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("err = %v, want ErrSeatNotFound", err)
	}
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, seats := f.seedEvent(t, []string{"A"}, 1)

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := f.tx.WithTx(ctx, func(txCtx context.Context) error {
				b, err := f.insertBooking(txCtx, ev.ID)
				if err != nil {
					return err
				}
				ok, err := f.seats.BookIfAvailable(txCtx, claim(seats[0], b.ID, fmt.Sprintf("T-%d", i)))
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("lost")
				}
				return nil
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	var bookings int
	if err := f.db.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&bookings); err != nil {
		t.Fatal(err)
	}
	if bookings != 1 {
		t.Fatalf("bookings = %d, losers must roll back", bookings)
	}
}

func TestTicketIndexRejectsDuplicatesButNotFreikarte(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, seats := f.seedEvent(t, []string{"A"}, 4)
	b := f.newBooking(t, ctx, ev.ID)

	if ok, err := f.seats.BookIfAvailable(ctx, claim(seats[0], b.ID, "T-100")); err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	_, err := f.seats.BookIfAvailable(ctx, claim(seats[1], b.ID, "T-100"))
	if !errors.Is(err, ErrDuplicateTicket) {
		t.Fatalf("err = %v, want ErrDuplicateTicket", err)
	}

	for i, ticket := range []string{"Freikarte", "frei karte"} {
		if ok, err := f.seats.BookIfAvailable(ctx, claim(seats[2+i], b.ID, ticket)); err != nil || !ok {
			t.Fatalf("freikarte %q: ok=%v err=%v", ticket, ok, err)
		}
	}

	found, err := f.seats.FindTicketNumbers(ctx, []string{"T-100", "T-200", "t-100"})
	if err != nil {
		t.Fatalf("FindTicketNumbers: %v", err)
	}
	if len(found) != 1 || found[0] != "T-100" {
		t.Fatalf("found = %v", found)
	}
}

func TestTxRollsBackOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, seats := f.seedEvent(t, []string{"A"}, 2)

	boom := errors.New("boom")
	err := f.tx.WithTx(ctx, func(txCtx context.Context) error {
		b := f.newBooking(t, txCtx, ev.ID)
		if ok, err := f.seats.BookIfAvailable(txCtx, claim(seats[0], b.ID, "T-1")); err != nil || !ok {
			t.Fatalf("claim: ok=%v err=%v", ok, err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, err := f.seats.GetByID(ctx, ev.ID, seats[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.SeatAvailable || got.TicketNumber != nil {
		t.Fatalf("seat not rolled back: %+v", got)
	}
}

func TestLockEventSeatsAndBookedListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, seats := f.seedEvent(t, []string{"A"}, 3)
	b := f.newBooking(t, ctx, ev.ID)
	if ok, err := f.seats.BookIfAvailable(ctx, claim(seats[1], b.ID, "T-5")); err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}

	err := f.tx.WithTx(ctx, func(txCtx context.Context) error {
		n, err := f.seats.LockEventSeats(txCtx, ev.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("booked = %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	booked, err := f.seats.ListBooked(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ListBooked: %v", err)
	}
	if len(booked) != 1 || booked[0].SellerLastName != "Verkauf" || *booked[0].TicketNumber != "T-5" {
		t.Fatalf("booked = %+v", booked)
	}

	byBooking, err := f.seats.ListByBooking(ctx, b.ID)
	if err != nil || len(byBooking) != 1 {
		t.Fatalf("ListByBooking: %v (%d)", err, len(byBooking))
	}
}
