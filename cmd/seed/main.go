// Command seed loads the sample events into the database.  Existing events
// with the same title are left alone unless -reset is given, which deletes
// every event first.
package main

import (
	"context"
	"flag"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

func sampleEvents(loc *time.Location) []service.CreateEventInput {
	return []service.CreateEventInput{
		{
			Title:       "Summer Music Festival",
			Description: "Join us for an amazing evening of live music featuring local and international artists.",
			Venue:       "Central Park Amphitheater",
			Date:        time.Date(2026, 7, 15, 19, 0, 0, 0, loc),
			Layout:      model.LayoutConfig{Mode: model.LayoutLegacy, LeftRows: 6, LeftCols: 10, RightRows: 6, RightCols: 10},
		},
		{
			Title:       "Comedy Night Special",
			Description: "Laugh out loud with our lineup of top comedians.",
			Venue:       "Downtown Comedy Club",
			Date:        time.Date(2026, 3, 20, 20, 0, 0, 0, loc),
			Layout:      model.LayoutConfig{Mode: model.LayoutLegacy, LeftRows: 5, LeftCols: 9, RightRows: 5, RightCols: 9},
		},
		{
			Title:       "Classical Orchestra Performance",
			Description: "Experience the beauty of classical music performed by the City Symphony Orchestra.",
			Venue:       "Grand Concert Hall",
			Date:        time.Date(2026, 4, 10, 18, 30, 0, 0, loc),
			Layout:      model.LayoutConfig{Mode: model.LayoutLegacy, LeftRows: 6, LeftCols: 12, RightRows: 7, RightCols: 13},
		},
	}
}

func main() {
	reset := flag.Bool("reset", false, "delete all events before seeding")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	seats := repository.NewSeatRepo(db)
	events := service.NewEventService(repository.NewTxManager(db), repository.NewEventRepo(db), seats, repository.NewBookingRepo(db))

	existing, err := events.ListEvents(ctx)
	if err != nil {
		log.Fatalf("list events: %v", err)
	}
	titles := map[string]bool{}
	for _, ev := range existing {
		if *reset {
			if err := events.DeleteEvent(ctx, ev.ID); err != nil {
				log.Fatalf("delete %q: %v", ev.Title, err)
			}
			log.Printf("deleted event: %s", ev.Title)
			continue
		}
		titles[ev.Title] = true
	}

	for _, in := range sampleEvents(cfg.ExportLocation) {
		if titles[in.Title] {
			log.Printf("skipping existing event: %s", in.Title)
			continue
		}
		ev, err := events.CreateEvent(ctx, in)
		if err != nil {
			log.Fatalf("create %q: %v", in.Title, err)
		}
		log.Printf("created event: %s (%d seats)", ev.Title, len(ev.Seats))
	}
	log.Printf("seeding completed")
}
