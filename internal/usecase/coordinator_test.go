package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"OlympiaTracker/internal/domain"
)

type fakeExtractor struct {
	characters []domain.Character
	events     []domain.Event
	forums     []domain.Forum
	err        error
}

func (f *fakeExtractor) EnumerateCharacters(context.Context) ([]domain.Character, error) {
	return f.characters, f.err
}

func (f *fakeExtractor) FetchActivityLog(context.Context) ([]domain.Event, error) {
	return f.events, f.err
}

func (f *fakeExtractor) FetchForumTree(context.Context, domain.ForumSection) ([]domain.Forum, error) {
	return f.forums, f.err
}

// memoryStore mirrors the remote store's contract: natural-key duplicates
// answer domain.ErrDuplicate, history appends dedup against the latest entry
// by trimmed equality.
type memoryStore struct {
	characters map[int]domain.Character
	stories    map[int][]string
	mdj        map[int][]string
	attributes map[int]domain.AttributeSet
	equipment  map[int][]domain.EquipmentItem
	events     map[string]bool
	forums     map[string]domain.Forum
	topics     map[string]domain.Topic
	messages   map[string]bool

	failUpdates bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		characters: map[int]domain.Character{},
		stories:    map[int][]string{},
		mdj:        map[int][]string{},
		attributes: map[int]domain.AttributeSet{},
		equipment:  map[int][]domain.EquipmentItem{},
		events:     map[string]bool{},
		forums:     map[string]domain.Forum{},
		topics:     map[string]domain.Topic{},
		messages:   map[string]bool{},
	}
}

func (m *memoryStore) GetCharacter(_ context.Context, targetID int) (domain.Character, error) {
	character, ok := m.characters[targetID]
	if !ok {
		return domain.Character{}, domain.ErrNotFound
	}
	return character, nil
}

func (m *memoryStore) CreateCharacter(_ context.Context, character domain.Character) error {
	if character.Name == nil || character.Faction == nil {
		return &domain.ValidationError{Resource: "character", Missing: []string{"name", "faction"}}
	}
	if _, ok := m.characters[character.TargetID]; ok {
		return domain.ErrDuplicate
	}
	m.characters[character.TargetID] = character
	return nil
}

func (m *memoryStore) UpdateCharacter(_ context.Context, character domain.Character) error {
	if m.failUpdates {
		return errors.New("store unavailable")
	}
	if _, ok := m.characters[character.TargetID]; !ok {
		return domain.ErrNotFound
	}
	m.characters[character.TargetID] = character
	return nil
}

func appendHistory(entries []string, entry string) ([]string, error) {
	trimmed := strings.TrimSpace(entry)
	if len(entries) > 0 && entries[len(entries)-1] == trimmed {
		return entries, domain.ErrDuplicate
	}
	return append(entries, trimmed), nil
}

func (m *memoryStore) AppendStory(_ context.Context, targetID int, story string) error {
	entries, err := appendHistory(m.stories[targetID], story)
	m.stories[targetID] = entries
	return err
}

func (m *memoryStore) AppendMDJ(_ context.Context, targetID int, mdj string) error {
	entries, err := appendHistory(m.mdj[targetID], mdj)
	m.mdj[targetID] = entries
	return err
}

func (m *memoryStore) UpsertAttributes(_ context.Context, targetID int, attrs domain.AttributeSet) error {
	m.attributes[targetID] = attrs
	return nil
}

func (m *memoryStore) ReplaceEquipment(_ context.Context, targetID int, items []domain.EquipmentItem) error {
	m.equipment[targetID] = items
	return nil
}

func (m *memoryStore) CreateEvent(_ context.Context, event domain.Event) error {
	key := event.Event + "|" + event.From + "|" + event.RawDate + "|" + event.Territory
	if m.events[key] {
		return domain.ErrDuplicate
	}
	m.events[key] = true
	return nil
}

func (m *memoryStore) UpsertForum(_ context.Context, forum domain.Forum) error {
	if forum.Link == "" {
		return &domain.ValidationError{Resource: "forum", Missing: []string{"link"}}
	}
	m.forums[forum.Link] = forum
	return nil
}

func (m *memoryStore) UpsertTopic(_ context.Context, _ string, topic domain.Topic) error {
	m.topics[topic.Link] = topic
	return nil
}

func (m *memoryStore) CreateMessage(_ context.Context, topicLink string, message domain.Message) error {
	key := topicLink + "|" + message.RawDate + "|" + message.Author.Name
	if m.messages[key] {
		return domain.ErrDuplicate
	}
	m.messages[key] = true
	return nil
}

func newCoordinator(extractor *fakeExtractor, store *memoryStore) *Coordinator {
	return NewCoordinator(CoordinatorDeps{Extractor: extractor, Store: store})
}

func TestSyncCharactersIdempotent(t *testing.T) {
	t.Parallel()

	character := domain.Character{
		TargetID: 7,
		Name:     domain.StrPtr("Astyanax"),
		Faction:  domain.StrPtr("Ligue des Ombres"),
		Story:    domain.StrPtr("Né sous les murs de Troie."),
	}
	extractor := &fakeExtractor{characters: []domain.Character{character}}
	store := newMemoryStore()
	c := newCoordinator(extractor, store)

	report, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)
	// Character created, story appended.
	require.Equal(t, 2, report.Created)
	require.Zero(t, report.Updated)
	require.Zero(t, report.Failed)
	require.Len(t, store.characters, 1)
	require.Equal(t, []string{"Né sous les murs de Troie."}, store.stories[7])

	// A second pass over the same scrape updates instead of creating, and
	// the unchanged story counts as a duplicate, not a second entry.
	report, err = c.SyncCharacters(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.Created)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, 1, report.Duplicates)
	require.Len(t, store.characters, 1)
	require.Len(t, store.stories[7], 1)
}

func TestSyncCharactersHistoryAppendsOnChange(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	extractor := &fakeExtractor{characters: []domain.Character{{
		TargetID: 7,
		Name:     domain.StrPtr("Astyanax"),
		Faction:  domain.StrPtr("Ligue des Ombres"),
		MDJ:      domain.StrPtr("Le bronze ne ment jamais."),
	}}}
	c := newCoordinator(extractor, store)

	_, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)

	extractor.characters[0].MDJ = domain.StrPtr("  La guerre reprend.  ")
	report, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Updated)

	// Trimmed before comparison and storage.
	require.Equal(t, []string{"Le bronze ne ment jamais.", "La guerre reprend."}, store.mdj[7])
}

func TestSyncCharactersSideWritesFollowUpdate(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	attrs := domain.AttributeSet{CC: 12, PV: 34, XP: 1200}
	items := []domain.EquipmentItem{{Name: "Lance de bronze", Type: "arme"}}
	extractor := &fakeExtractor{characters: []domain.Character{{
		TargetID:   7,
		Name:       domain.StrPtr("Astyanax"),
		Faction:    domain.StrPtr("Ligue des Ombres"),
		Attributes: &attrs,
		Equipment:  items,
	}}}
	c := newCoordinator(extractor, store)

	report, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 2, report.Updated)
	require.Equal(t, attrs, store.attributes[7])
	require.Equal(t, items, store.equipment[7])
}

func TestSyncCharactersUpdateFailureCountsFailed(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.characters[7] = domain.Character{TargetID: 7}
	store.failUpdates = true

	extractor := &fakeExtractor{characters: []domain.Character{{
		TargetID: 7,
		Name:     domain.StrPtr("Astyanax"),
		Story:    domain.StrPtr("Né sous les murs de Troie."),
	}}}
	c := newCoordinator(extractor, store)

	report, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Zero(t, report.Updated)

	// The failed update is the only write; no history append follows it.
	require.Empty(t, store.stories[7])
	require.Zero(t, report.Created)
}

func TestSyncCharactersRejectedCreateSkipsSideWrites(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()

	// A faction-less profile is a normal parse outcome, but the store's
	// create route rejects it; its side-channels must not be written.
	extractor := &fakeExtractor{characters: []domain.Character{{
		TargetID:   -5,
		Name:       domain.StrPtr("Silencieux"),
		Story:      domain.StrPtr("Une ombre parmi les ombres."),
		MDJ:        domain.StrPtr("Rien à dire."),
		Attributes: &domain.AttributeSet{PV: 10},
	}}}
	c := newCoordinator(extractor, store)

	report, err := c.SyncCharacters(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	require.Zero(t, report.Created)
	require.Zero(t, report.Failed)

	require.Empty(t, store.characters)
	require.Empty(t, store.stories[-5])
	require.Empty(t, store.mdj[-5])
	require.NotContains(t, store.attributes, -5)
}

func TestSyncCharactersExtractionFailureAborts(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{err: errors.New("bus timed out")}
	c := newCoordinator(extractor, newMemoryStore())

	_, err := c.SyncCharacters(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "enumerate characters")
}

func TestSyncEventsDuplicateRejection(t *testing.T) {
	t.Parallel()

	event := domain.Event{
		Event:     "Combat",
		From:      "Astyanax (7)",
		RawDate:   "Aujourd'hui à 17:23",
		Territory: "Thèbes",
	}
	extractor := &fakeExtractor{events: []domain.Event{event, event}}
	store := newMemoryStore()
	c := newCoordinator(extractor, store)

	report, err := c.SyncEvents(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Duplicates)
	require.Zero(t, report.Failed)
	require.Len(t, store.events, 1)
}

func TestSyncForumsTree(t *testing.T) {
	t.Parallel()

	message := domain.Message{
		Author:  domain.MessageAuthor{Name: "Astyanax"},
		Content: "Premier message",
		RawDate: "Hier à 10:00",
	}
	extractor := &fakeExtractor{forums: []domain.Forum{{
		Name: "Conseil de guerre",
		Link: "/forum.php?f=1",
		Type: domain.SectionPrivate,
		Topics: []domain.Topic{{
			Name:     "Stratégie d'hiver",
			Link:     "/topic.php?t=11",
			Messages: []domain.Message{message, message},
		}},
	}}}
	store := newMemoryStore()
	c := newCoordinator(extractor, store)

	report, err := c.SyncForums(context.Background(), domain.SectionPrivate)
	require.NoError(t, err)
	require.Equal(t, 2, report.Updated)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Duplicates)
	require.Len(t, store.messages, 1)
}

func TestSyncForumsValidationSkipsSubtree(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{forums: []domain.Forum{
		{
			Name: "Sans lien",
			Type: domain.SectionPrivate,
			Topics: []domain.Topic{{
				Name:     "Orphelin",
				Link:     "/topic.php?t=99",
				Messages: []domain.Message{{RawDate: "Hier à 10:00", Author: domain.MessageAuthor{Name: "Nyx"}}},
			}},
		},
		{
			Name: "Taverne",
			Link: "/forum.php?f=2",
			Type: domain.SectionPrivate,
		},
	}}
	store := newMemoryStore()
	c := newCoordinator(extractor, store)

	report, err := c.SyncForums(context.Background(), domain.SectionPrivate)
	require.NoError(t, err)

	// The rejected forum skips its whole subtree; the sibling still lands.
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 1, report.Updated)
	require.Zero(t, report.Created)
	require.Empty(t, store.topics)
	require.Empty(t, store.messages)
	require.Len(t, store.forums, 1)
}
