// Package layout expands an event's seating configuration into the seats
// that must exist for it.  Everything here is pure: no I/O and no shared
// state, so it is safe to call from any goroutine.
package layout

import (
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// ErrInvalidLayout is wrapped by every validation failure of Generate.
var ErrInvalidLayout = errors.New("invalid layout")

// Size limits of a layout.  Rows and seats per row apply to each block or
// row group; MaxTotalSeats to the whole event.  The per-block limits are
// checked before any product is formed, so totals cannot overflow.
const (
	MaxRows        = 500
	MaxSeatsPerRow = 500
	MaxRowGroups   = 100
	MaxTotalSeats  = 20000
)

// SeatSpec describes one seat to be created.
type SeatSpec struct {
	Row     string
	Number  int
	Section model.Section
	Status  model.SeatStatus
}

// Plan is the expansion of a LayoutConfig.  TotalSeats always equals
// len(Seats) and is what the event caches.
type Plan struct {
	Seats      []SeatSpec
	TotalSeats int
}

// Mode resolves the layout mode.  An empty mode is flexible when row
// groups are present and legacy otherwise.
func Mode(cfg model.LayoutConfig) model.LayoutMode {
	if cfg.Mode != "" {
		return cfg.Mode
	}
	if len(cfg.RowGroups) > 0 {
		return model.LayoutFlexible
	}
	return model.LayoutLegacy
}

// Validate checks counts, size limits and aisle positions without
// generating seats.
func Validate(cfg model.LayoutConfig) error {
	switch Mode(cfg) {
	case model.LayoutLegacy:
		if err := checkBlock("left", cfg.LeftRows, cfg.LeftCols); err != nil {
			return err
		}
		if err := checkBlock("right", cfg.RightRows, cfg.RightCols); err != nil {
			return err
		}
	case model.LayoutFlexible:
		if len(cfg.RowGroups) > MaxRowGroups {
			return fmt.Errorf("%w: at most %d row groups are allowed", ErrInvalidLayout, MaxRowGroups)
		}
		for i, g := range cfg.RowGroups {
			if g.Rows < 0 || g.SeatsPerRow < 0 || g.AisleAfterSeat < 0 {
				return fmt.Errorf("%w: row group %d has a negative value", ErrInvalidLayout, i+1)
			}
			if err := checkBlock(fmt.Sprintf("row group %d", i+1), g.Rows, g.SeatsPerRow); err != nil {
				return err
			}
			if g.AisleAfterSeat > g.SeatsPerRow {
				return fmt.Errorf("%w: row group %d aisle after seat %d exceeds %d seats per row",
					ErrInvalidLayout, i+1, g.AisleAfterSeat, g.SeatsPerRow)
			}
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidLayout, cfg.Mode)
	}
	if cfg.BackAisleAfterSeat < 0 {
		return fmt.Errorf("%w: back aisle must not be negative", ErrInvalidLayout)
	}
	if err := checkBlock("back", cfg.BackRows, cfg.BackCols); err != nil {
		return err
	}
	if cfg.BackAisleAfterSeat > cfg.BackCols {
		return fmt.Errorf("%w: back aisle after seat %d exceeds %d back columns",
			ErrInvalidLayout, cfg.BackAisleAfterSeat, cfg.BackCols)
	}
	if total := TotalSeatsFor(cfg); total > MaxTotalSeats {
		return fmt.Errorf("%w: %d seats exceed the limit of %d", ErrInvalidLayout, total, MaxTotalSeats)
	}
	return nil
}

func checkBlock(name string, rows, cols int) error {
	switch {
	case rows < 0 || cols < 0:
		return fmt.Errorf("%w: %s rows and columns must not be negative", ErrInvalidLayout, name)
	case rows > MaxRows:
		return fmt.Errorf("%w: %s has %d rows, at most %d are allowed", ErrInvalidLayout, name, rows, MaxRows)
	case cols > MaxSeatsPerRow:
		return fmt.Errorf("%w: %s has %d seats per row, at most %d are allowed", ErrInvalidLayout, name, cols, MaxSeatsPerRow)
	}
	return nil
}

// TotalSeatsFor computes the seat count of cfg without expanding it.
// Callers must Validate first; counts above the limits are not guarded
// here.
func TotalSeatsFor(cfg model.LayoutConfig) int {
	total := cfg.BackRows * cfg.BackCols
	switch Mode(cfg) {
	case model.LayoutLegacy:
		total += cfg.LeftRows*cfg.LeftCols + cfg.RightRows*cfg.RightCols
	case model.LayoutFlexible:
		for _, g := range cfg.RowGroups {
			total += g.Rows * g.SeatsPerRow
		}
	}
	return total
}

// Generate expands cfg into seats, row-major.  Legacy layouts yield LEFT
// then RIGHT, each lettered from A.  Flexible layouts yield one MAIN block
// whose row letters continue across groups.  The upper tier (RANG) is
// appended last and lettered from A.  All seats start AVAILABLE.
func Generate(cfg model.LayoutConfig) (Plan, error) {
	if err := Validate(cfg); err != nil {
		return Plan{}, err
	}
	seats := make([]SeatSpec, 0, TotalSeatsFor(cfg))

	switch Mode(cfg) {
	case model.LayoutLegacy:
		seats = appendBlock(seats, model.SectionLeft, 0, cfg.LeftRows, cfg.LeftCols)
		seats = appendBlock(seats, model.SectionRight, 0, cfg.RightRows, cfg.RightCols)
	case model.LayoutFlexible:
		row := 0
		for _, g := range cfg.RowGroups {
			seats = appendBlock(seats, model.SectionMain, row, g.Rows, g.SeatsPerRow)
			row += g.Rows
		}
	}
	seats = appendBlock(seats, model.SectionRang, 0, cfg.BackRows, cfg.BackCols)

	return Plan{Seats: seats, TotalSeats: len(seats)}, nil
}

// appendBlock adds rows x cols seats starting at row index first.  Zero
// rows or zero columns add nothing.
func appendBlock(dst []SeatSpec, section model.Section, first, rows, cols int) []SeatSpec {
	if rows <= 0 || cols <= 0 {
		return dst
	}
	for r := 0; r < rows; r++ {
		label := RowLabel(first + r)
		for n := 1; n <= cols; n++ {
			dst = append(dst, SeatSpec{
				Row:     label,
				Number:  n,
				Section: section,
				Status:  model.SeatAvailable,
			})
		}
	}
	return dst
}

// AisleAfter returns the seat number after which a renderer draws an aisle
// in the given row, or 0 for none.  It never affects numbering.
func AisleAfter(cfg model.LayoutConfig, section model.Section, row string) int {
	switch section {
	case model.SectionRang:
		return cfg.BackAisleAfterSeat
	case model.SectionMain:
		idx, ok := RowIndex(row)
		if !ok {
			return 0
		}
		for _, g := range cfg.RowGroups {
			if idx < g.Rows {
				return g.AisleAfterSeat
			}
			idx -= g.Rows
		}
		return 0
	case model.SectionLeft, model.SectionRight:
		return 0
	}
	return 0
}
