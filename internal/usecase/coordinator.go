package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"OlympiaTracker/internal/domain"
	"OlympiaTracker/internal/ports"
)

// Report summarizes one synchronization pass for the operator. Duplicates
// are expected outcomes (the store's 409 contract), counted, never failed.
type Report struct {
	Created    int
	Updated    int
	Duplicates int
	Skipped    int
	Failed     int
}

// String renders the report for console output.
func (r Report) String() string {
	return fmt.Sprintf("created=%d updated=%d duplicates=%d skipped=%d failed=%d",
		r.Created, r.Updated, r.Duplicates, r.Skipped, r.Failed)
}

// CoordinatorDeps wires the extraction surface and the store client.
type CoordinatorDeps struct {
	Extractor ports.Extractor
	Store     ports.TrackerStore
	Logger    *slog.Logger
}

// Coordinator owns every create-vs-update-vs-reject decision against the
// store. The extractor never talks to the store; records flow through here,
// strictly one at a time, so the existence-probe-then-write sequence stays
// race-free without store-side transactions.
type Coordinator struct {
	extractor ports.Extractor
	store     ports.TrackerStore
	logger    *slog.Logger
}

// NewCoordinator constructs the synchronization component.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	return &Coordinator{
		extractor: deps.Extractor,
		store:     deps.Store,
		logger:    deps.Logger,
	}
}

// SyncCharacters enumerates every profile on the site and reconciles each
// against the store: absent ids are created, known ids updated, and the
// history/attribute/equipment side-channels written afterwards.
func (c *Coordinator) SyncCharacters(ctx context.Context) (Report, error) {
	characters, err := c.extractor.EnumerateCharacters(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("enumerate characters: %w", err)
	}

	var report Report
	for _, character := range characters {
		c.syncCharacter(ctx, &report, character)
	}

	c.info("character sync finished", "report", report.String())
	return report, nil
}

func (c *Coordinator) syncCharacter(ctx context.Context, report *Report, character domain.Character) {
	_, err := c.store.GetCharacter(ctx, character.TargetID)

	var landed bool
	switch {
	case errors.Is(err, domain.ErrNotFound):
		landed = c.tally(report, c.store.CreateCharacter(ctx, character), created,
			"create character", "target_id", character.TargetID)
	case err != nil:
		report.Failed++
		c.warn("existence probe failed", "target_id", character.TargetID, "error", err)
		return
	default:
		landed = c.tally(report, c.store.UpdateCharacter(ctx, character), updated,
			"update character", "target_id", character.TargetID)
	}
	// Side-writes depend on the character record existing; a rejected or
	// failed primary write skips them.
	if !landed {
		return
	}

	if character.Story != nil {
		c.tally(report, c.store.AppendStory(ctx, character.TargetID, *character.Story), created,
			"append story", "target_id", character.TargetID)
	}
	if character.MDJ != nil {
		c.tally(report, c.store.AppendMDJ(ctx, character.TargetID, *character.MDJ), created,
			"append mdj", "target_id", character.TargetID)
	}
	if character.Attributes != nil {
		c.tally(report, c.store.UpsertAttributes(ctx, character.TargetID, *character.Attributes), updated,
			"upsert attributes", "target_id", character.TargetID)
	}
	if character.Equipment != nil {
		c.tally(report, c.store.ReplaceEquipment(ctx, character.TargetID, character.Equipment), updated,
			"replace equipment", "target_id", character.TargetID)
	}
}

// SyncEvents fetches the current activity log and appends each entry. The
// store rejects the second occurrence of a uniqueness tuple with 409.
func (c *Coordinator) SyncEvents(ctx context.Context) (Report, error) {
	events, err := c.extractor.FetchActivityLog(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch activity log: %w", err)
	}

	var report Report
	for _, event := range events {
		c.tally(&report, c.store.CreateEvent(ctx, event), created,
			"create event", "event", event.Event, "territory", event.Territory)
	}

	c.info("event sync finished", "report", report.String())
	return report, nil
}

// SyncForums drains one forum section and reconciles the tree: forums and
// topics upsert by link, messages append with duplicate rejection.
func (c *Coordinator) SyncForums(ctx context.Context, section domain.ForumSection) (Report, error) {
	forums, err := c.extractor.FetchForumTree(ctx, section)
	if err != nil {
		return Report{}, fmt.Errorf("fetch forum tree %s: %w", section, err)
	}

	var report Report
	for _, forum := range forums {
		if !c.tally(&report, c.store.UpsertForum(ctx, forum), updated, "upsert forum", "forum", forum.Name) {
			continue
		}
		for _, topic := range forum.Topics {
			if !c.tally(&report, c.store.UpsertTopic(ctx, forum.Link, topic), updated, "upsert topic", "topic", topic.Name) {
				continue
			}
			for _, message := range topic.Messages {
				c.tally(&report, c.store.CreateMessage(ctx, topic.Link, message), created,
					"create message", "topic", topic.Name, "author", message.Author.Name)
			}
		}
	}

	c.info("forum sync finished", "section", section, "report", report.String())
	return report, nil
}

type successKind int

const (
	created successKind = iota
	updated
)

// tally folds one store write into the report: success counts by kind,
// duplicates and local validation rejections are expected and logged low,
// everything else is a failure. It returns false when dependents of the
// write should be skipped.
func (c *Coordinator) tally(report *Report, err error, kind successKind, msg string, args ...any) bool {
	var validation *domain.ValidationError

	switch {
	case err == nil:
		if kind == created {
			report.Created++
		} else {
			report.Updated++
		}
		return true
	case errors.Is(err, domain.ErrDuplicate):
		report.Duplicates++
		c.debug(msg+": duplicate", args...)
		return true
	case errors.As(err, &validation):
		report.Skipped++
		c.warn(msg+": payload rejected locally", append(args, "error", err)...)
		return false
	default:
		report.Failed++
		c.warn(msg+" failed", append(args, "error", err)...)
		return false
	}
}

func (c *Coordinator) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Coordinator) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Coordinator) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
