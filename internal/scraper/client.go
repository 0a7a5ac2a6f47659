// Package scraper performs HTTP fetches against the game site and parses
// the returned markup into domain records. It depends only on structural
// conventions of the pages (tables, link presence, a known not-found
// marker), never on styling.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"OlympiaTracker/internal/config"
	"OlympiaTracker/internal/domain"
)

const (
	profilePath  = "/infos.php"
	logsPath     = "/logs.php"
	mapLocalPath = "/map.php"
	forumPath    = "/forum.php"

	// Marker the site renders when a profile id does not exist.
	notFoundMarker = "error player id"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

// Scraper fetches site pages sequentially through a rate-limited, cookie
// carrying client. One Scraper serves one triggered operation; the session
// cookies are injected at construction, not held in process globals.
type Scraper struct {
	http     *resty.Client
	limiter  *rate.Limiter
	baseURL  *url.URL
	sections map[string]string
	logger   *slog.Logger
}

// New builds a Scraper from site configuration. Section labels map to the
// header text located on the forum index page.
func New(cfg config.SiteConfig, sections map[string]string, logger *slog.Logger) (*Scraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site base url %s: %w", cfg.BaseURL, err)
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout())
	client.SetHeader("User-Agent", userAgent)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	client.SetCookieJar(jar)

	cookies := make([]*http.Cookie, 0, len(cfg.SessionCookies))
	for name, value := range cfg.SessionCookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	jar.SetCookies(base, cookies)

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}

	return &Scraper{
		http:     client,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:  base,
		sections: sections,
		logger:   logger,
	}, nil
}

// fetchPage performs one rate-limited GET and returns the body and status.
// Transport failures come back as *domain.TransientError; status
// interpretation is left to the caller, since a non-success answer means
// different things per page family.
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (string, int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", 0, &domain.TransientError{Op: "fetch " + pageURL, Err: err}
	}

	resp, err := s.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", 0, &domain.TransientError{Op: "fetch " + pageURL, Err: err}
	}

	return resp.String(), resp.StatusCode(), nil
}

// fetchDocument fetches a page that is only useful when it answers 2xx.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, status, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &domain.TransientError{Op: "fetch " + pageURL, Status: status}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &domain.TransientError{Op: "parse " + pageURL, Err: err}
	}
	return doc, nil
}

// resolveLink turns a possibly relative page link into a fetchable URL.
func (s *Scraper) resolveLink(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	return s.baseURL.ResolveReference(parsed).String()
}

// textOrNil extracts trimmed text from the first match, nil when the node is
// absent or empty. Missing nodes are expected; they degrade single fields,
// never whole records.
func textOrNil(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return nil
	}
	return &text
}

// attrOrNil extracts a trimmed attribute value from the first match.
func attrOrNil(sel *goquery.Selection, name string) *string {
	if sel.Length() == 0 {
		return nil
	}
	value, ok := sel.First().Attr(name)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// targetIDFromHref pulls the numeric targetId query parameter out of a
// profile link. Negative ids are valid.
func targetIDFromHref(href string) *int {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	raw := parsed.Query().Get("targetId")
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (s *Scraper) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Scraper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
