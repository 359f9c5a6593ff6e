package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

const eventColumns = `id, title, description, venue, date, image_url, total_seats,
	layout_mode, left_rows, left_cols, right_rows, right_cols, row_groups,
	back_rows, back_cols, back_aisle_after_seat, created_at, updated_at`

// EventRepo encapsulates all database queries related to events.  The
// layout configuration is flattened into columns; row groups are stored
// as a JSON document.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the provided DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func scanEvent(rs rowScanner) (model.Event, error) {
	var (
		e         model.Event
		mode      string
		rowGroups sql.NullString
	)
	if err := rs.Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.Date, &e.ImageURL, &e.TotalSeats,
		&mode, &e.Layout.LeftRows, &e.Layout.LeftCols, &e.Layout.RightRows, &e.Layout.RightCols, &rowGroups,
		&e.Layout.BackRows, &e.Layout.BackCols, &e.Layout.BackAisleAfterSeat, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Event{}, err
	}
	e.Layout.Mode = model.LayoutMode(mode)
	if rowGroups.Valid && rowGroups.String != "" {
		if err := json.Unmarshal([]byte(rowGroups.String), &e.Layout.RowGroups); err != nil {
			return model.Event{}, fmt.Errorf("decode row groups of event %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func encodeRowGroups(groups []model.RowGroup) (sql.NullString, error) {
	if len(groups) == 0 {
		return sql.NullString{}, nil
	}
	bs, err := json.Marshal(groups)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(bs), Valid: true}, nil
}

// Create inserts a new event.  The id must already be set.  After the
// insert the row is re-read so timestamps reflect the database defaults.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	groups, err := encodeRowGroups(e.Layout.RowGroups)
	if err != nil {
		return err
	}
	const q = `INSERT INTO events (id, title, description, venue, date, image_url, total_seats,
	             layout_mode, left_rows, left_cols, right_rows, right_cols, row_groups,
	             back_rows, back_cols, back_aisle_after_seat)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	l := e.Layout
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, e.ID, e.Title, e.Description, e.Venue, e.Date.UTC(), e.ImageURL,
		e.TotalSeats, string(l.Mode), l.LeftRows, l.LeftCols, l.RightRows, l.RightCols, groups,
		l.BackRows, l.BackCols, l.BackAisleAfterSeat); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	created, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID retrieves an event by id.  ErrEventNotFound is returned when no
// row matches.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns all events ordered by date, each with its seat counts.
func (r *EventRepo) List(ctx context.Context) ([]model.EventSummary, error) {
	const q = `SELECT e.id, e.title, e.description, e.venue, e.date, e.image_url, e.total_seats,
	                  e.layout_mode, e.left_rows, e.left_cols, e.right_rows, e.right_cols, e.row_groups,
	                  e.back_rows, e.back_cols, e.back_aisle_after_seat, e.created_at, e.updated_at,
	                  COUNT(s.id), COALESCE(SUM(s.status = 'BOOKED'), 0)
	           FROM events e
	           LEFT JOIN seats s ON s.event_id = e.id
	           GROUP BY e.id
	           ORDER BY e.date ASC, e.id ASC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.EventSummary{}
	for rows.Next() {
		var sum model.EventSummary
		e, err := scanEvent(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &sum.SeatCount, &sum.BookedCount)...)
		}))
		if err != nil {
			return nil, err
		}
		sum.Event = e
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes all mutable fields of e, including the layout and the
// cached seat total.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	groups, err := encodeRowGroups(e.Layout.RowGroups)
	if err != nil {
		return err
	}
	const q = `UPDATE events
	           SET title = ?, description = ?, venue = ?, date = ?, image_url = ?, total_seats = ?,
	               layout_mode = ?, left_rows = ?, left_cols = ?, right_rows = ?, right_cols = ?, row_groups = ?,
	               back_rows = ?, back_cols = ?, back_aisle_after_seat = ?
	           WHERE id = ?`
	l := e.Layout
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, e.Title, e.Description, e.Venue, e.Date.UTC(), e.ImageURL, e.TotalSeats,
		string(l.Mode), l.LeftRows, l.LeftCols, l.RightRows, l.RightCols, groups,
		l.BackRows, l.BackCols, l.BackAisleAfterSeat, e.ID); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	// MySQL reports 0 affected rows for unchanged values; existence is
	// confirmed by the re-read.
	updated, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *updated
	return nil
}

// Delete removes an event row.  Seats and bookings must be removed first
// by the caller within the same transaction.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
