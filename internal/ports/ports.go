package ports

import (
	"context"

	"OlympiaTracker/internal/domain"
)

// ProfileFetcher fetches a single profile page by id. It returns
// domain.ErrNotFound when the site reports no such id and a
// *domain.TransientError for everything else that went wrong.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, targetID int) (domain.Character, error)
}

// Extractor is the scrape surface the coordinator context sees. Each call is
// one logical operation against the site; results come back complete, never
// streamed.
type Extractor interface {
	EnumerateCharacters(ctx context.Context) ([]domain.Character, error)
	FetchActivityLog(ctx context.Context) ([]domain.Event, error)
	FetchForumTree(ctx context.Context, section domain.ForumSection) ([]domain.Forum, error)
}

// TrackerStore is the remote store's ingestion surface. Create-style calls
// answer domain.ErrDuplicate when the natural key (or latest history entry)
// already exists; lookups answer domain.ErrNotFound.
type TrackerStore interface {
	GetCharacter(ctx context.Context, targetID int) (domain.Character, error)
	CreateCharacter(ctx context.Context, character domain.Character) error
	UpdateCharacter(ctx context.Context, character domain.Character) error
	AppendStory(ctx context.Context, targetID int, story string) error
	AppendMDJ(ctx context.Context, targetID int, mdj string) error
	UpsertAttributes(ctx context.Context, targetID int, attrs domain.AttributeSet) error
	ReplaceEquipment(ctx context.Context, targetID int, items []domain.EquipmentItem) error
	CreateEvent(ctx context.Context, event domain.Event) error
	UpsertForum(ctx context.Context, forum domain.Forum) error
	UpsertTopic(ctx context.Context, forumLink string, topic domain.Topic) error
	CreateMessage(ctx context.Context, topicLink string, message domain.Message) error
}
