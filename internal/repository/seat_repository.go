package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// seatColumns lists the columns scanned by scanSeat, in order.
const seatColumns = `id, event_id, row_label, seat_number, section, status,
	booked_by, booked_at, ticket_number, booking_id, created_at`

// seatOrder sorts by row then number; labels sort by length first so Z
// precedes AA.
const seatOrder = `ORDER BY CHAR_LENGTH(row_label), row_label, seat_number, section`

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeat(rs rowScanner) (model.Seat, error) {
	var (
		s            model.Seat
		section      string
		status       string
		bookedBy     sql.NullString
		bookedAt     sql.NullTime
		ticketNumber sql.NullString
		bookingID    sql.NullString
	)
	if err := rs.Scan(&s.ID, &s.EventID, &s.Row, &s.Number, &section, &status,
		&bookedBy, &bookedAt, &ticketNumber, &bookingID, &s.CreatedAt); err != nil {
		return model.Seat{}, err
	}
	s.Section = model.Section(section)
	s.Status = model.SeatStatus(status)
	if bookedBy.Valid {
		s.BookedBy = &bookedBy.String
	}
	if bookedAt.Valid {
		t := bookedAt.Time
		s.BookedAt = &t
	}
	if ticketNumber.Valid {
		s.TicketNumber = &ticketNumber.String
	}
	if bookingID.Valid {
		s.BookingID = &bookingID.String
	}
	return s, nil
}

func (r *SeatRepo) querySeats(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Seat{}
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// seatBatch bounds the rows of one INSERT so large layouts stay well below
// the placeholder limit of a prepared statement.
const seatBatch = 500

// CreateBulk inserts seats in multi-row statements of up to seatBatch
// rows.  Seats must carry their ids; status defaults to AVAILABLE.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	for start := 0; start < len(seats); start += seatBatch {
		end := min(start+seatBatch, len(seats))
		if err := r.insertSeats(ctx, seats[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepo) insertSeats(ctx context.Context, seats []model.Seat) error {
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (id, event_id, row_label, seat_number, section, status) VALUES `)
	args := make([]any, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("(?, ?, ?, ?, ?, ?)")
		status := s.Status
		if status == "" {
			status = model.SeatAvailable
		}
		args = append(args, s.ID, s.EventID, s.Row, s.Number, string(s.Section), string(status))
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert seats: %w", err)
	}
	return nil
}

// ListByEvent retrieves all seats of an event ordered by row then number.
func (r *SeatRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = ? ` + seatOrder
	return r.querySeats(ctx, q, eventID)
}

// ListByBooking retrieves the seats claimed by a booking.
func (r *SeatRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE booking_id = ? ` + seatOrder
	return r.querySeats(ctx, q, bookingID)
}

// GetForEvent fetches the given seats, restricted to one event.  Ids that
// do not exist or belong to another event are silently absent from the
// result; callers compare lengths.
func (r *SeatRepo) GetForEvent(ctx context.Context, eventID string, ids []string) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = ? AND id IN (` + placeholders(len(ids)) + `) ` + seatOrder
	args := make([]any, 0, len(ids)+1)
	args = append(args, eventID)
	for _, id := range ids {
		args = append(args, id)
	}
	return r.querySeats(ctx, q, args...)
}

// GetByID retrieves one seat of an event.
func (r *SeatRepo) GetByID(ctx context.Context, eventID, seatID string) (*model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id = ? AND event_id = ?`
	s, err := scanSeat(conn(ctx, r.db).QueryRowContext(ctx, q, seatID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// BookIfAvailable moves a seat from AVAILABLE to BOOKED in one conditional
// statement.  It reports false, without error, when the seat was no
// longer AVAILABLE (or not part of the event) at the moment of the write.
func (r *SeatRepo) BookIfAvailable(ctx context.Context, c model.SeatClaim) (bool, error) {
	const q = `UPDATE seats
	           SET status = ?, booked_by = ?, booked_at = ?, ticket_number = ?, booking_id = ?
	           WHERE id = ? AND event_id = ? AND status = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		string(model.SeatBooked), c.BookedBy, c.BookedAt, c.TicketNumber, c.BookingID,
		c.SeatID, c.EventID, string(model.SeatAvailable))
	if err != nil {
		if isDuplicateKey(err) {
			return false, fmt.Errorf("%w: %s", ErrDuplicateTicket, c.TicketNumber)
		}
		return false, lockError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FindTicketNumbers returns which of numbers are already stored on any
// seat of any event.  Matching is exact and case-sensitive.
func (r *SeatRepo) FindTicketNumbers(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	q := `SELECT DISTINCT ticket_number FROM seats WHERE ticket_number IN (` + placeholders(len(numbers)) + `)`
	args := make([]any, len(numbers))
	for i, n := range numbers {
		args[i] = n
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		found = append(found, n)
	}
	return found, rows.Err()
}

// LockEventSeats takes row locks on every seat of an event for the
// surrounding transaction and returns how many are BOOKED.  Concurrent
// bookings of the event wait until the transaction ends.
func (r *SeatRepo) LockEventSeats(ctx context.Context, eventID string) (int, error) {
	const q = `SELECT status FROM seats WHERE event_id = ? FOR UPDATE`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, eventID)
	if err != nil {
		return 0, lockError(err)
	}
	defer rows.Close()

	booked := 0
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return 0, err
		}
		if model.SeatStatus(status) == model.SeatBooked {
			booked++
		}
	}
	return booked, rows.Err()
}

// DeleteByEvent removes all seats of an event.
func (r *SeatRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM seats WHERE event_id = ?`, eventID)
	return err
}

// ListBooked returns the booked seats of an event joined with the seller
// recorded on their booking.
func (r *SeatRepo) ListBooked(ctx context.Context, eventID string) ([]model.BookedSeat, error) {
	const q = `SELECT s.id, s.event_id, s.row_label, s.seat_number, s.section, s.status,
	                  s.booked_by, s.booked_at, s.ticket_number, s.booking_id, s.created_at,
	                  COALESCE(b.seller_first_name, ''), COALESCE(b.seller_last_name, '')
	           FROM seats s
	           LEFT JOIN bookings b ON b.id = s.booking_id
	           WHERE s.event_id = ? AND s.status = ?
	           ORDER BY s.section, CHAR_LENGTH(s.row_label), s.row_label, s.seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, eventID, string(model.SeatBooked))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.BookedSeat{}
	for rows.Next() {
		var bs model.BookedSeat
		seat, err := scanSeat(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &bs.SellerFirstName, &bs.SellerLastName)...)
		}))
		if err != nil {
			return nil, err
		}
		bs.Seat = seat
		result = append(result, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanFunc adapts a function to rowScanner.
type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }
