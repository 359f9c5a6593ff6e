package service

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.
// Transactions are serialised and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events   map[string]model.Event
	seats    map[string]model.Seat
	bookings map[string]model.Booking

	calls   int
	txCount int
	// claimed records the seat ids passed to BookIfAvailable, in call order.
	claimed []string

	// staleReads makes GetForEvent report every seat AVAILABLE, as if the
	// read happened before a concurrent booking committed.
	staleReads bool
	// failWith makes the named method return the error.
	failWith map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[string]model.Event{},
		seats:    map[string]model.Seat{},
		bookings: map[string]model.Booking{},
		failWith: map[string]error{},
	}
}

func (m *memStore) enter(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.failWith[method]
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.txCount++
	events, seats, bookings := cloneMap(m.events), cloneMap(m.seats), cloneMap(m.bookings)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.events, m.seats, m.bookings = events, seats, bookings
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortSeats(seats []model.Seat) {
	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if len(a.Row) != len(b.Row) {
			return len(a.Row) < len(b.Row)
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Section < b.Section
	})
}

// SeatStore

func (m *memStore) CreateBulk(_ context.Context, seats []model.Seat) error {
	if err := m.enter("CreateBulk"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range seats {
		m.seats[s.ID] = s
	}
	return nil
}

func (m *memStore) ListByEvent(_ context.Context, eventID string) ([]model.Seat, error) {
	if err := m.enter("ListByEvent"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Seat{}
	for _, s := range m.seats {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sortSeats(out)
	return out, nil
}

func (m *memStore) ListByBooking(_ context.Context, bookingID string) ([]model.Seat, error) {
	if err := m.enter("ListByBooking"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Seat{}
	for _, s := range m.seats {
		if s.BookingID != nil && *s.BookingID == bookingID {
			out = append(out, s)
		}
	}
	sortSeats(out)
	return out, nil
}

func (m *memStore) GetForEvent(_ context.Context, eventID string, ids []string) ([]model.Seat, error) {
	if err := m.enter("GetForEvent"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Seat{}
	for _, id := range ids {
		s, ok := m.seats[id]
		if !ok || s.EventID != eventID {
			continue
		}
		if m.staleReads {
			s.Status = model.SeatAvailable
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, eventID, seatID string) (*model.Seat, error) {
	if err := m.enter("GetByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok || s.EventID != eventID {
		return nil, repository.ErrSeatNotFound
	}
	return &s, nil
}

func (m *memStore) BookIfAvailable(_ context.Context, c model.SeatClaim) (bool, error) {
	if err := m.enter("BookIfAvailable"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed = append(m.claimed, c.SeatID)
	s, ok := m.seats[c.SeatID]
	if !ok || s.EventID != c.EventID || s.Status != model.SeatAvailable {
		return false, nil
	}
	m.seats[c.SeatID] = bookedSeat(s, c)
	return true, nil
}

func (m *memStore) FindTicketNumbers(_ context.Context, numbers []string) ([]string, error) {
	if err := m.enter("FindTicketNumbers"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, n := range numbers {
		want[n] = true
	}
	var found []string
	for _, s := range m.seats {
		if s.TicketNumber != nil && want[*s.TicketNumber] {
			found = append(found, *s.TicketNumber)
			want[*s.TicketNumber] = false
		}
	}
	sort.Strings(found)
	return found, nil
}

func (m *memStore) LockEventSeats(_ context.Context, eventID string) (int, error) {
	if err := m.enter("LockEventSeats"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booked := 0
	for _, s := range m.seats {
		if s.EventID == eventID && s.Status == model.SeatBooked {
			booked++
		}
	}
	return booked, nil
}

func (m *memStore) DeleteByEvent(_ context.Context, eventID string) error {
	if err := m.enter("DeleteByEvent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.seats {
		if s.EventID == eventID {
			delete(m.seats, id)
		}
	}
	return nil
}

func (m *memStore) ListBooked(_ context.Context, eventID string) ([]model.BookedSeat, error) {
	if err := m.enter("ListBooked"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.BookedSeat{}
	for _, s := range m.seats {
		if s.EventID != eventID || s.Status != model.SeatBooked {
			continue
		}
		b := m.bookings[*s.BookingID]
		out = append(out, model.BookedSeat{Seat: s, SellerFirstName: b.SellerFirstName, SellerLastName: b.SellerLastName})
	}
	return out, nil
}

// bookingStore adapts memStore to BookingStore, whose method names
// overlap with the other stores.
type bookingStore struct{ m *memStore }

func (b bookingStore) Create(_ context.Context, bk *model.Booking) error {
	if err := b.m.enter("CreateBooking"); err != nil {
		return err
	}
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	b.m.bookings[bk.ID] = *bk
	return nil
}

func (b bookingStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if err := b.m.enter("GetBooking"); err != nil {
		return nil, err
	}
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	bk, ok := b.m.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &bk, nil
}

func (b bookingStore) DeleteByEvent(_ context.Context, eventID string) error {
	if err := b.m.enter("DeleteBookings"); err != nil {
		return err
	}
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	for id, bk := range b.m.bookings {
		if bk.EventID == eventID {
			delete(b.m.bookings, id)
		}
	}
	return nil
}

// eventStore adapts memStore to EventStore.
type eventStore struct{ m *memStore }

func (e eventStore) Create(_ context.Context, ev *model.Event) error {
	if err := e.m.enter("CreateEvent"); err != nil {
		return err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.m.events[ev.ID] = *ev
	return nil
}

func (e eventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	if err := e.m.enter("GetEvent"); err != nil {
		return nil, err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	ev, ok := e.m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &ev, nil
}

func (e eventStore) List(_ context.Context) ([]model.EventSummary, error) {
	if err := e.m.enter("ListEvents"); err != nil {
		return nil, err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	out := []model.EventSummary{}
	for _, ev := range e.m.events {
		sum := model.EventSummary{Event: ev}
		for _, s := range e.m.seats {
			if s.EventID == ev.ID {
				sum.SeatCount++
				if s.Status == model.SeatBooked {
					sum.BookedCount++
				}
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (e eventStore) Update(_ context.Context, ev *model.Event) error {
	if err := e.m.enter("UpdateEvent"); err != nil {
		return err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if _, ok := e.m.events[ev.ID]; !ok {
		return repository.ErrEventNotFound
	}
	e.m.events[ev.ID] = *ev
	return nil
}

func (e eventStore) Delete(_ context.Context, id string) error {
	if err := e.m.enter("DeleteEvent"); err != nil {
		return err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if _, ok := e.m.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(e.m.events, id)
	return nil
}

// seed helpers

func (m *memStore) addEvent(id string) {
	m.events[id] = model.Event{ID: id, Title: "Event " + id, Venue: "Hall"}
}

func (m *memStore) addSeat(eventID, id, row string, number int) {
	m.seats[id] = model.Seat{
		ID:      id,
		EventID: eventID,
		Row:     row,
		Number:  number,
		Section: model.SectionMain,
		Status:  model.SeatAvailable,
	}
}

func (m *memStore) seat(id string) model.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[id]
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}
