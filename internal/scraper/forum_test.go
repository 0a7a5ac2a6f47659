package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"OlympiaTracker/internal/domain"
)

var testSections = map[string]string{
	"private": "Forums Privés",
	"rp":      "Forums RP",
}

const forumIndexFixture = `
<html><body>
<table>
  <tr class="section-header"><td>Forums Privés</td></tr>
  <tr><td><a href="/forum.php?f=1">Conseil de guerre</a></td></tr>
  <tr><td><a href="/forum.php?f=2">Taverne</a></td></tr>
  <tr class="section-header"><td>Forums RP</td></tr>
  <tr><td><a href="/forum.php?f=3">Chroniques</a></td></tr>
</table>
</body></html>`

func forumServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forum.php":
			serveForum(w, r)
		case "/topic.php":
			serveTopic(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func serveForum(w http.ResponseWriter, r *http.Request) {
	forum := r.URL.Query().Get("f")
	if forum == "" {
		_, _ = w.Write([]byte(forumIndexFixture))
		return
	}

	if forum == "2" {
		// Empty board.
		_, _ = w.Write([]byte("<html><body><table></table></body></html>"))
		return
	}

	switch r.URL.Query().Get("page") {
	case "", "1":
		_, _ = fmt.Fprintf(w, `
		<table>
		  <tr class="topic"><td><a class="topic-link" href="/topic.php?t=11">Stratégie d'hiver</a></td>
		      <td><a href="/infos.php?targetId=7">Astyanax</a></td></tr>
		</table>
		<a rel="next" href="/forum.php?f=%s&page=2">Suivant</a>`, forum)
	case "2":
		// The first topic row repeats across the boundary (pinned).
		_, _ = w.Write([]byte(`
		<table>
		  <tr class="topic"><td><a class="topic-link" href="/topic.php?t=11">Stratégie d'hiver</a></td>
		      <td><a href="/infos.php?targetId=7">Astyanax</a></td></tr>
		  <tr class="topic"><td><a class="topic-link" href="/topic.php?t=12">Recrutement</a></td>
		      <td><a href="/infos.php?targetId=-2">Nyx</a></td></tr>
		</table>`))
	}
}

func serveTopic(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("t")
	if topic == "12" {
		// This thread is broken upstream; the sibling topic must survive.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	page := r.URL.Query().Get("page")
	switch page {
	case "", "1":
		_, _ = w.Write([]byte(`
		<div class="message">
		  <a href="/infos.php?targetId=7">Astyanax</a>
		  <div class="message-date">Hier à 10:00</div>
		  <div class="message-content">Premier message</div>
		</div>
		<a rel="next" href="/topic.php?t=11&page=2">Suivant</a>`))
	case "2":
		// First block repeats the last message of page 1.
		_, _ = w.Write([]byte(`
		<div class="message">
		  <a href="/infos.php?targetId=7">Astyanax</a>
		  <div class="message-date">Hier à 10:00</div>
		  <div class="message-content">Premier message</div>
		</div>
		<div class="message">
		  <a href="/infos.php?targetId=-2">Nyx</a>
		  <div class="message-date">Hier à 11:30</div>
		  <div class="message-content">Deuxième message</div>
		</div>
		<a rel="next" href="/topic.php?t=11&page=3">Suivant</a>`))
	case "3":
		_, _ = w.Write([]byte(`
		<div class="message">
		  <a href="/infos.php?targetId=7">Astyanax</a>
		  <div class="message-date">Aujourd'hui à 09:15</div>
		  <div class="message-content">Troisième message</div>
		</div>`))
	}
}

func TestFetchForumTree(t *testing.T) {
	t.Parallel()

	server := forumServer(t)
	defer server.Close()

	s := newTestScraper(t, server.URL, testSections)

	forums, err := s.FetchForumTree(context.Background(), domain.SectionPrivate)
	require.NoError(t, err)

	// Only the contiguous run under "Forums Privés"; the RP board stays out.
	require.Len(t, forums, 2)
	require.Equal(t, "Conseil de guerre", forums[0].Name)
	require.Equal(t, "Taverne", forums[1].Name)
	require.Equal(t, domain.SectionPrivate, forums[0].Type)

	// Topic listing paginated to exhaustion, pinned row deduplicated.
	topics := forums[0].Topics
	require.Len(t, topics, 2)
	require.Equal(t, "Stratégie d'hiver", topics[0].Name)
	require.Equal(t, "Recrutement", topics[1].Name)

	// Three message pages concatenated in page order, boundary repeat
	// collapsed onto its first occurrence.
	messages := topics[0].Messages
	require.Len(t, messages, 3)
	require.Equal(t, "Premier message", messages[0].Content)
	require.Equal(t, "Deuxième message", messages[1].Content)
	require.Equal(t, "Troisième message", messages[2].Content)

	for _, message := range messages {
		require.False(t, message.RetrievedAt.IsZero())
	}

	require.Equal(t, "Astyanax", messages[0].Author.Name)
	require.NotNil(t, messages[0].Author.TargetID)
	require.Equal(t, 7, *messages[0].Author.TargetID)
	require.Equal(t, -2, *messages[1].Author.TargetID)

	// Topic author resolves to the first message's author.
	require.Equal(t, "Astyanax", topics[0].Author.Name)

	// The broken thread yields an empty message list, not a failed crawl.
	require.Empty(t, topics[1].Messages)

	// Empty sibling board is still present.
	require.Empty(t, forums[1].Topics)
}

func TestFetchForumTreeRPSection(t *testing.T) {
	t.Parallel()

	server := forumServer(t)
	defer server.Close()

	s := newTestScraper(t, server.URL, testSections)

	forums, err := s.FetchForumTree(context.Background(), domain.SectionRP)
	require.NoError(t, err)
	require.Len(t, forums, 1)
	require.Equal(t, "Chroniques", forums[0].Name)
	require.Equal(t, domain.SectionRP, forums[0].Type)
}

func TestFetchForumTreeUnknownSection(t *testing.T) {
	t.Parallel()

	server := forumServer(t)
	defer server.Close()

	s := newTestScraper(t, server.URL, testSections)

	_, err := s.FetchForumTree(context.Background(), domain.ForumSection("arena"))
	require.Error(t, err)
}
