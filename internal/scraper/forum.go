package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"OlympiaTracker/internal/domain"
)

// FetchForumTree locates the named section header on the forum index page,
// collects the contiguous run of forum rows under it, then drains every
// forum's topic listing and every topic's message thread to exhaustion.
// Pagination stops exactly when a page stops advertising a next-page link.
//
// Failures are isolated per unit of work: a forum whose topic listing fails
// comes back with no topics, a topic whose thread fails comes back with no
// messages, and siblings are still collected.
func (s *Scraper) FetchForumTree(ctx context.Context, section domain.ForumSection) ([]domain.Forum, error) {
	header, ok := s.sections[string(section)]
	if !ok {
		return nil, fmt.Errorf("unknown forum section %q", section)
	}

	doc, err := s.fetchDocument(ctx, forumPath)
	if err != nil {
		return nil, err
	}

	forums := collectSectionForums(doc, header, section)
	if len(forums) == 0 {
		s.warn("forum section has no boards", "section", section, "header", header)
		return forums, nil
	}

	for i := range forums {
		topics, err := s.fetchForumTopics(ctx, forums[i].Link)
		if err != nil {
			s.warn("topic listing failed", "forum", forums[i].Name, "error", err)
			continue
		}
		s.drainTopics(ctx, topics)
		forums[i].Topics = topics
	}

	return forums, nil
}

// collectSectionForums walks the index table: the row carrying the section
// header text, then every following forum row until the next section header.
func collectSectionForums(doc *goquery.Document, header string, section domain.ForumSection) []domain.Forum {
	var headerRow *goquery.Selection
	doc.Find("tr.section-header").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if strings.Contains(strings.TrimSpace(row.Text()), header) {
			headerRow = row
			return false
		}
		return true
	})
	if headerRow == nil {
		return nil
	}

	var forums []domain.Forum
	headerRow.NextAll().EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.HasClass("section-header") {
			return false
		}

		link := row.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return true
		}

		forums = append(forums, domain.Forum{
			Name:    name,
			Link:    strings.TrimSpace(href),
			Type:    section,
			Faction: textOrNil(row.Find("a[href*='faction']")),
		})
		return true
	})

	return forums
}

// fetchForumTopics pages through one forum's topic listing. Topics repeated
// across page boundaries (the site re-renders pinned rows) collapse onto
// their first occurrence.
func (s *Scraper) fetchForumTopics(ctx context.Context, forumLink string) ([]domain.Topic, error) {
	var (
		topics []domain.Topic
		seen   = map[string]struct{}{}
	)

	pageURL := forumLink
	for {
		doc, err := s.fetchDocument(ctx, s.resolveLink(pageURL))
		if err != nil {
			return nil, err
		}

		doc.Find("tr.topic").Each(func(_ int, row *goquery.Selection) {
			link := row.Find("a.topic-link").First()
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			if _, dup := seen[href]; dup {
				return
			}
			seen[href] = struct{}{}

			topics = append(topics, domain.Topic{
				Name:   strings.TrimSpace(link.Text()),
				Link:   href,
				Author: parseAuthor(row.Find("a[href*='targetId']")),
			})
		})

		next, ok := nextPageLink(doc)
		if !ok {
			return topics, nil
		}
		pageURL = next
	}
}

// drainTopics fills in each topic's message thread. Topics are independent
// leaves, so the fan-out runs concurrently; the shared limiter still spaces
// the actual fetches. A failed topic keeps an empty message list.
func (s *Scraper) drainTopics(ctx context.Context, topics []domain.Topic) {
	var wg sync.WaitGroup
	for i := range topics {
		wg.Add(1)
		go func(topic *domain.Topic) {
			defer wg.Done()
			messages, err := s.fetchTopicMessages(ctx, topic.Link)
			if err != nil {
				s.warn("topic thread failed", "topic", topic.Name, "error", err)
				return
			}
			topic.Messages = messages
			if len(messages) > 0 {
				topic.Author = messages[0].Author
			}
		}(&topics[i])
	}
	wg.Wait()
}

// fetchTopicMessages pages through one topic's thread in page order.
// Messages re-seen across a page boundary (or on a re-fetched page) dedup on
// their (date, author) identity, matching the store's uniqueness tuple.
func (s *Scraper) fetchTopicMessages(ctx context.Context, topicLink string) ([]domain.Message, error) {
	var (
		messages []domain.Message
		seen     = map[string]struct{}{}
	)

	pageURL := topicLink
	for {
		doc, err := s.fetchDocument(ctx, s.resolveLink(pageURL))
		if err != nil {
			return nil, err
		}
		retrievedAt := time.Now()

		doc.Find(".message").Each(func(_ int, block *goquery.Selection) {
			message := domain.Message{
				Author:      parseAuthor(block.Find("a[href*='targetId']")),
				RawDate:     strings.TrimSpace(block.Find(".message-date").First().Text()),
				RetrievedAt: retrievedAt,
			}
			if content := textOrNil(block.Find(".message-content")); content != nil {
				message.Content = *content
			}

			key := message.RawDate + "|" + message.Author.Name
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			messages = append(messages, message)
		})

		next, ok := nextPageLink(doc)
		if !ok {
			return messages, nil
		}
		pageURL = next
	}
}

// nextPageLink reports the successor page advertised by the rendered page.
// Absence of the link is the only termination condition the crawl relies on.
func nextPageLink(doc *goquery.Document) (string, bool) {
	href, ok := doc.Find("a[rel='next']").First().Attr("href")
	if !ok {
		return "", false
	}
	href = strings.TrimSpace(href)
	return href, href != ""
}

func parseAuthor(link *goquery.Selection) domain.MessageAuthor {
	author := domain.MessageAuthor{Name: domain.UnknownActor}
	if link.Length() == 0 {
		return author
	}

	first := link.First()
	if name := strings.TrimSpace(first.Text()); name != "" {
		author.Name = name
	}
	if href, ok := first.Attr("href"); ok {
		author.TargetID = targetIDFromHref(href)
	}
	return author
}
