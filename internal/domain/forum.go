package domain

import "time"

// ForumSection names a crawlable section of the forum index.
type ForumSection string

const (
	SectionPrivate ForumSection = "private"
	SectionRP      ForumSection = "rp"
)

// Forum is one board under a section header on the forum index page,
// upserted by its link.
type Forum struct {
	Name    string
	Link    string
	Type    ForumSection
	Faction *string
	Topics  []Topic
}

// Topic is a thread inside a forum. Link is the natural key; Messages hold
// the fully drained, page-ordered thread.
type Topic struct {
	Name     string
	Link     string
	Author   MessageAuthor
	Messages []Message
}

// Message is a single post. Dedup tuple at the store: (topic, date, author).
// RetrievedAt anchors RawDate's relative form, same as on Event.
type Message struct {
	Author      MessageAuthor
	Content     string
	RawDate     string
	RetrievedAt time.Time
}

// MessageAuthor carries the display name and, when the author link encodes
// one, the resolved character id.
type MessageAuthor struct {
	Name     string
	TargetID *int
}
