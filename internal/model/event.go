package model

import "time"

// LayoutMode selects how a LayoutConfig is expanded into seats.
type LayoutMode string

const (
	// LayoutLegacy produces side-by-side LEFT and RIGHT blocks.
	LayoutLegacy LayoutMode = "legacy"
	// LayoutFlexible produces one MAIN block built from row groups.
	LayoutFlexible LayoutMode = "flexible"
)

// RowGroup is a run of identical rows in a flexible layout.  An
// AisleAfterSeat of 0 means the rows have no aisle.
type RowGroup struct {
	Rows           int `json:"rows"`
	SeatsPerRow    int `json:"seatsPerRow"`
	AisleAfterSeat int `json:"aisleAfterSeat"`
}

// LayoutConfig describes the seating of an event.  The Left/Right fields
// are read in legacy mode and RowGroups in flexible mode; the Back fields
// add an optional upper tier in both modes.
type LayoutConfig struct {
	Mode               LayoutMode `json:"mode"`
	LeftRows           int        `json:"leftRows"`
	LeftCols           int        `json:"leftCols"`
	RightRows          int        `json:"rightRows"`
	RightCols          int        `json:"rightCols"`
	RowGroups          []RowGroup `json:"rowGroups,omitempty"`
	BackRows           int        `json:"backRows"`
	BackCols           int        `json:"backCols"`
	BackAisleAfterSeat int        `json:"backAisleAfterSeat"`
}

// Event is a performance with its own seat map.
//
// Fields:
//  ID          – primary key (uuid).
//  Title       – display title.
//  Description – optional long text.
//  Venue       – where the event takes place.
//  Date        – start date and time (UTC).
//  ImageURL    – optional poster.
//  TotalSeats  – number of seats generated from Layout; cached.
//  Layout      – seating configuration the seats were generated from.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          string       `json:"id"`          // events.id
	Title       string       `json:"title"`       // events.title
	Description string       `json:"description"` // events.description
	Venue       string       `json:"venue"`       // events.venue
	Date        time.Time    `json:"date"`        // events.date
	ImageURL    string       `json:"imageUrl"`    // events.image_url
	TotalSeats  int          `json:"totalSeats"`  // events.total_seats
	Layout      LayoutConfig `json:"layout"`      // events.layout_* columns and row_groups JSON
	CreatedAt   time.Time    `json:"createdAt"`   // events.created_at
	UpdatedAt   time.Time    `json:"updatedAt"`   // events.updated_at
}

// EventSummary is an event as listed in the directory, with seat counts.
type EventSummary struct {
	Event
	SeatCount   int `json:"seatCount"`
	BookedCount int `json:"bookedCount"`
}
