package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"OlympiaTracker/internal/domain"
)

const logSource = "agent"

// FetchActivityLog fetches the territory-scoped log page and maps every data
// row of its table into an Event. Rows that fail to resolve a column still
// produce a best-effort entry with placeholder text; a row is never silently
// dropped. The territory label comes from a side-fetch of the local map
// page and degrades to a placeholder when that fetch fails.
func (s *Scraper) FetchActivityLog(ctx context.Context) ([]domain.Event, error) {
	territory := s.fetchTerritoryName(ctx)

	doc, err := s.fetchDocument(ctx, logsPath)
	if err != nil {
		return nil, err
	}
	retrievedAt := time.Now()

	var events []domain.Event
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		events = append(events, parseLogRow(row, territory, retrievedAt))
	})

	s.debug("activity log parsed", "territory", territory, "rows", len(events))
	return events, nil
}

func parseLogRow(row *goquery.Selection, territory string, retrievedAt time.Time) domain.Event {
	event := domain.Event{
		Event:       domain.UnknownEvent,
		From:        domain.UnknownActor,
		WithWhom:    domain.NoCounterpart,
		RawDate:     domain.UnknownDate,
		RetrievedAt: retrievedAt,
		Territory:   territory,
		Source:      logSource,
	}

	if label := textOrNil(row.Find("td:nth-child(1) span")); label != nil {
		event.Event = *label
	}
	if details := textOrNil(row.Find("td:nth-child(1) .logs-hidden")); details != nil {
		event.Details = *details
	}
	if from := textOrNil(row.Find("td:nth-child(2)")); from != nil {
		event.From = *from
	}
	if with := textOrNil(row.Find("td:nth-child(3)")); with != nil {
		event.WithWhom = *with
	}
	if date := textOrNil(row.Find("td:nth-child(4)")); date != nil {
		event.RawDate = *date
	}

	return event
}

// fetchTerritoryName resolves the current territory label from the local map
// page. Failures degrade to the placeholder; the log fetch proceeds.
func (s *Scraper) fetchTerritoryName(ctx context.Context) string {
	doc, err := s.fetchDocument(ctx, mapLocalPath+"?local")
	if err != nil {
		s.warn("territory fetch failed", "error", err)
		return domain.UnknownTerritory
	}

	name := textOrNil(doc.Find("h1 font"))
	if name == nil {
		return domain.UnknownTerritory
	}
	return *name
}
