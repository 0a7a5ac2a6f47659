package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"OlympiaTracker/internal/domain"
)

// FetchProfile fetches and parses one profile page. A non-success status or
// the site's not-found marker in the body both classify as
// domain.ErrNotFound; transport failures surface as *domain.TransientError.
// Every parsed field is independently optional.
func (s *Scraper) FetchProfile(ctx context.Context, targetID int) (domain.Character, error) {
	pageURL := fmt.Sprintf("%s?targetId=%d", profilePath, targetID)

	body, status, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return domain.Character{}, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return domain.Character{}, fmt.Errorf("profile %d: %w", targetID, domain.ErrNotFound)
	}
	if strings.Contains(body, notFoundMarker) {
		return domain.Character{}, fmt.Errorf("profile %d: %w", targetID, domain.ErrNotFound)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return domain.Character{}, &domain.TransientError{Op: fmt.Sprintf("parse profile %d", targetID), Err: err}
	}

	character := domain.Character{
		TargetID:    targetID,
		Name:        textOrNil(doc.Find("#infos-player h1")),
		Rank:        parseRank(doc),
		Popularity:  textOrNil(doc.Find("a[href*='reputation']")),
		Faction:     textOrNil(doc.Find("a[href*='faction']")),
		Role:        textOrNil(doc.Find("#infos-player div:nth-child(3) i")),
		PortraitURL: attrOrNil(doc.Find(".infos-portrait img"), "src"),
		Story:       textOrNil(doc.Find(".infos-text")),
		MDJ:         textOrNil(doc.Find(".infos-mdj")),
		Equipment:   parseEquipment(doc),
		Attributes:  parseAttributes(doc),
	}

	s.debug("profile parsed", "target_id", targetID, "name", deref(character.Name))
	return character, nil
}

// parseRank reads the second info line, rendered as "<title> - <rank>".
func parseRank(doc *goquery.Document) *string {
	line := textOrNil(doc.Find("#infos-player div:nth-child(2)"))
	if line == nil {
		return nil
	}
	parts := strings.SplitN(*line, " - ", 2)
	if len(parts) != 2 {
		return nil
	}
	rank := strings.TrimSpace(parts[1])
	if rank == "" {
		return nil
	}
	return &rank
}

// parseEquipment maps the inventory table to items. Rows missing a name are
// dropped; any other missing cell degrades that field only.
func parseEquipment(doc *goquery.Document) []domain.EquipmentItem {
	var items []domain.EquipmentItem

	doc.Find("#equipment tr").Each(func(_ int, row *goquery.Selection) {
		name := textOrNil(row.Find(".item-name"))
		if name == nil {
			return
		}

		item := domain.EquipmentItem{
			Name:         *name,
			Price:        textOrNil(row.Find(".item-price")),
			ImageURL:     attrOrNil(row.Find("img.item-image"), "src"),
			ThumbnailURL: attrOrNil(row.Find("img.item-thumbnail"), "src"),
		}
		if itemType := textOrNil(row.Find(".item-type")); itemType != nil {
			item.Type = *itemType
		}
		if desc := textOrNil(row.Find(".item-description")); desc != nil {
			item.Description = *desc
		}

		items = append(items, item)
	})

	return items
}

// parseAttributes reads the stat table: one row per stat, code in the header
// cell, value in the data cell. An absent or unparseable table yields nil.
func parseAttributes(doc *goquery.Document) *domain.AttributeSet {
	table := doc.Find("#attributes")
	if table.Length() == 0 {
		return nil
	}

	stats := map[string]int{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		code := strings.ToLower(strings.TrimSpace(row.Find("th").First().Text()))
		raw := strings.TrimSpace(row.Find("td").First().Text())
		if code == "" || raw == "" {
			return
		}
		if value, err := strconv.Atoi(raw); err == nil {
			stats[code] = value
		}
	})

	if len(stats) == 0 {
		return nil
	}

	return &domain.AttributeSet{
		CC:  stats["cc"],
		CT:  stats["ct"],
		F:   stats["f"],
		E:   stats["e"],
		Agi: stats["agi"],
		PV:  stats["pv"],
		PM:  stats["pm"],
		FM:  stats["fm"],
		M:   stats["m"],
		A:   stats["a"],
		Mvt: stats["mvt"],
		P:   stats["p"],
		Spd: stats["spd"],
		R:   stats["r"],
		RM:  stats["rm"],
		XP:  stats["xp"],
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
