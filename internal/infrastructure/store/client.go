// Package store is the thin HTTP client for the tracker's ingestion API.
// The store owns duplicate detection: create-style endpoints answer 409 when
// the record's natural key (or latest history entry) already exists, and the
// client maps that to domain.ErrDuplicate, an expected outcome rather than a
// failure.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"OlympiaTracker/internal/chrono"
	"OlympiaTracker/internal/config"
	"OlympiaTracker/internal/domain"
	"OlympiaTracker/internal/ports"
)

// Client talks to the tracker store's resource endpoints.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ ports.TrackerStore = (*Client)(nil)

// NewClient builds a store client from configuration.
func NewClient(cfg config.StoreConfig, logger *slog.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout())
	client.SetHeader("Content-Type", "application/json")

	return &Client{http: client, logger: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

type characterPayload struct {
	TargetID    int     `json:"targetId"`
	Name        *string `json:"name"`
	Rank        *string `json:"rank"`
	Popularity  *string `json:"popularity"`
	Faction     *string `json:"faction"`
	Role        *string `json:"role"`
	PortraitURL *string `json:"portraitUrl"`
	Description *string `json:"description"`
}

type eventPayload struct {
	Event        string  `json:"event"`
	Details      string  `json:"details"`
	FromCol      string  `json:"fromCol"`
	WithWhom     string  `json:"withWhom"`
	Date         string  `json:"date"`
	ResolvedDate *string `json:"resolvedDate"`
	Territory    string  `json:"territory"`
	Source       string  `json:"source"`
}

type equipmentPayload struct {
	Items []equipmentItem `json:"items"`
}

type equipmentItem struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Price        *string `json:"price"`
	ImageURL     *string `json:"imageUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

type forumPayload struct {
	Name    string  `json:"name"`
	Link    string  `json:"link"`
	Type    string  `json:"type"`
	Faction *string `json:"faction"`
}

type topicPayload struct {
	ForumLink string        `json:"forumLink"`
	Name      string        `json:"name"`
	Link      string        `json:"link"`
	Author    authorPayload `json:"author"`
}

type messagePayload struct {
	TopicLink    string        `json:"topicLink"`
	Author       authorPayload `json:"author"`
	Content      string        `json:"content"`
	Date         string        `json:"date"`
	ResolvedDate *string       `json:"resolvedDate"`
}

type authorPayload struct {
	Name     string `json:"name"`
	TargetID *int   `json:"targetId"`
}

// GetCharacter probes the store for an existing character by external id.
func (c *Client) GetCharacter(ctx context.Context, targetID int) (domain.Character, error) {
	var payload characterPayload
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/characters/%d", targetID), nil, &payload)
	if err != nil {
		return domain.Character{}, err
	}

	return domain.Character{
		TargetID:    payload.TargetID,
		Name:        payload.Name,
		Rank:        payload.Rank,
		Popularity:  payload.Popularity,
		Faction:     payload.Faction,
		Role:        payload.Role,
		PortraitURL: payload.PortraitURL,
		Story:       payload.Description,
	}, nil
}

// CreateCharacter inserts a newly discovered character. The store resolves
// or lazily creates the named faction as a side effect.
func (c *Client) CreateCharacter(ctx context.Context, character domain.Character) error {
	if err := validateCharacter(character); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/characters", toCharacterPayload(character), nil)
}

// UpdateCharacter overwrites the mutable profile fields of a known character.
func (c *Client) UpdateCharacter(ctx context.Context, character domain.Character) error {
	if err := validateCharacter(character); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/characters/%d", character.TargetID)
	return c.do(ctx, http.MethodPut, path, toCharacterPayload(character), nil)
}

// AppendStory adds a story history entry. The store answers 409 when the
// content equals (after trim) the most recent entry.
func (c *Client) AppendStory(ctx context.Context, targetID int, story string) error {
	path := fmt.Sprintf("/api/characters/%d/history", targetID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"story": story}, nil)
}

// AppendMDJ adds a murmur history entry, deduplicated like AppendStory.
func (c *Client) AppendMDJ(ctx context.Context, targetID int, mdj string) error {
	if mdj == "" {
		return &domain.ValidationError{Resource: "mdj", Missing: []string{"mdj"}}
	}
	path := fmt.Sprintf("/api/characters/%d/mdj", targetID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"mdj": mdj}, nil)
}

// UpsertAttributes replaces the character's stat block.
func (c *Client) UpsertAttributes(ctx context.Context, targetID int, attrs domain.AttributeSet) error {
	path := fmt.Sprintf("/api/characters/%d/attributes", targetID)
	return c.do(ctx, http.MethodPost, path, attrs, nil)
}

// ReplaceEquipment swaps the stored equipment list for the one just
// scraped. Full replace keeps re-fetches idempotent; the site exposes no
// per-item natural key to merge on. Items missing the fields the store
// requires are dropped individually; the rest of the list still ships.
func (c *Client) ReplaceEquipment(ctx context.Context, targetID int, items []domain.EquipmentItem) error {
	payload := equipmentPayload{Items: make([]equipmentItem, 0, len(items))}
	for _, item := range items {
		if item.Name == "" || item.Type == "" {
			if c.logger != nil {
				c.logger.Debug("dropping incomplete equipment item", "target_id", targetID, "name", item.Name)
			}
			continue
		}
		payload.Items = append(payload.Items, equipmentItem{
			Name:         item.Name,
			Type:         item.Type,
			Description:  item.Description,
			Price:        item.Price,
			ImageURL:     item.ImageURL,
			ThumbnailURL: item.ThumbnailURL,
		})
	}

	path := fmt.Sprintf("/api/characters/%d/equipment", targetID)
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

// CreateEvent appends one activity log entry; 409 reports the uniqueness
// tuple (event, territory, resolved date, origin) already present.
func (c *Client) CreateEvent(ctx context.Context, event domain.Event) error {
	missing := missingEventFields(event)
	if len(missing) > 0 {
		return &domain.ValidationError{Resource: "event", Missing: missing}
	}

	return c.do(ctx, http.MethodPost, "/api/events", eventPayload{
		Event:        event.Event,
		Details:      event.Details,
		FromCol:      event.From,
		WithWhom:     event.WithWhom,
		Date:         event.RawDate,
		ResolvedDate: resolveDisplayDate(event.RawDate, event.RetrievedAt),
		Territory:    event.Territory,
		Source:       event.Source,
	}, nil)
}

// UpsertForum creates or refreshes a board keyed by its link.
func (c *Client) UpsertForum(ctx context.Context, forum domain.Forum) error {
	if forum.Name == "" || forum.Link == "" {
		return &domain.ValidationError{Resource: "forum", Missing: []string{"name", "link"}}
	}
	return c.do(ctx, http.MethodPost, "/api/forums", forumPayload{
		Name:    forum.Name,
		Link:    forum.Link,
		Type:    string(forum.Type),
		Faction: forum.Faction,
	}, nil)
}

// UpsertTopic creates or refreshes a topic keyed by its link.
func (c *Client) UpsertTopic(ctx context.Context, forumLink string, topic domain.Topic) error {
	if topic.Name == "" || topic.Link == "" {
		return &domain.ValidationError{Resource: "topic", Missing: []string{"name", "link"}}
	}
	return c.do(ctx, http.MethodPost, "/api/forums/topics", topicPayload{
		ForumLink: forumLink,
		Name:      topic.Name,
		Link:      topic.Link,
		Author:    authorPayload{Name: topic.Author.Name, TargetID: topic.Author.TargetID},
	}, nil)
}

// CreateMessage appends one post; 409 reports the (topic, date, author)
// tuple already present.
func (c *Client) CreateMessage(ctx context.Context, topicLink string, message domain.Message) error {
	if message.RawDate == "" || message.Author.Name == "" {
		return &domain.ValidationError{Resource: "message", Missing: []string{"date", "author"}}
	}
	return c.do(ctx, http.MethodPost, "/api/forums/topics/messages", messagePayload{
		TopicLink:    topicLink,
		Author:       authorPayload{Name: message.Author.Name, TargetID: message.Author.TargetID},
		Content:      message.Content,
		Date:         message.RawDate,
		ResolvedDate: resolveDisplayDate(message.RawDate, message.RetrievedAt),
	}, nil)
}

// do issues one request and maps the store's status contract onto the error
// taxonomy: 404 → ErrNotFound, 409 → ErrDuplicate, 400 → the server's
// validation message, anything else non-2xx → plain error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	var remoteErr errorBody
	req.SetError(&remoteErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		return &domain.TransientError{Op: method + " " + path, Err: err}
	}

	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case resp.StatusCode() == http.StatusConflict:
		if c.logger != nil {
			c.logger.Debug("store reported duplicate", "method", method, "path", path)
		}
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrDuplicate)
	case resp.StatusCode() == http.StatusBadRequest:
		return fmt.Errorf("%s %s: store rejected payload: %s", method, path, remoteErr.Error)
	default:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode())
	}
}

// resolveDisplayDate anchors a relative display date at the instant the page
// carrying it was fetched. A sync can run long past retrieval, so resolving
// at write time would shift "Hier"/"Aujourd'hui" across midnight.
// Unresolvable text stays raw-only; the store orders by the raw string then.
func resolveDisplayDate(raw string, retrievedAt time.Time) *string {
	if retrievedAt.IsZero() {
		retrievedAt = time.Now()
	}
	resolved, ok := chrono.Resolve(raw, retrievedAt)
	if !ok {
		return nil
	}
	return domain.StrPtr(resolved.Format(time.RFC3339))
}

func toCharacterPayload(character domain.Character) characterPayload {
	return characterPayload{
		TargetID:    character.TargetID,
		Name:        character.Name,
		Rank:        character.Rank,
		Popularity:  character.Popularity,
		Faction:     character.Faction,
		Role:        character.Role,
		PortraitURL: character.PortraitURL,
		Description: character.Story,
	}
}

// validateCharacter enforces the store's required fields before any bytes
// leave the process.
func validateCharacter(character domain.Character) error {
	var missing []string
	if character.Name == nil {
		missing = append(missing, "name")
	}
	if character.Faction == nil {
		missing = append(missing, "faction")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Resource: "character", Missing: missing}
	}
	return nil
}

func missingEventFields(event domain.Event) []string {
	var missing []string
	if event.Event == "" {
		missing = append(missing, "event")
	}
	if event.From == "" {
		missing = append(missing, "fromCol")
	}
	if event.RawDate == "" {
		missing = append(missing, "date")
	}
	if event.Territory == "" {
		missing = append(missing, "territory")
	}
	return missing
}
