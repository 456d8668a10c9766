package extractor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// LinkedInExtractor fetches the public (logged-out) rendering of a profile
// page and scrapes whatever LinkedIn exposes there: name, headline, about
// section, experience entries. Profiles behind the authwall come back as a
// login page; that is reported as empty, not as an error.
type LinkedInExtractor struct {
	client *http.Client
	logger *log.Logger
}

func NewLinkedInExtractor(timeout time.Duration, logger *log.Logger) *LinkedInExtractor {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &LinkedInExtractor{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (e *LinkedInExtractor) Extract(ctx context.Context, profileURL string) Result {
	profileURL = strings.TrimSpace(profileURL)
	parsed, err := url.Parse(profileURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Errored(fmt.Errorf("invalid profile URL: %s", profileURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return Errored(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return Errored(fmt.Errorf("fetch %s: %w", profileURL, err))
	}
	defer resp.Body.Close()

	if isAuthwall(resp.Request.URL) {
		e.logf("profile behind authwall url=%s", profileURL)
		return Empty()
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		// Rate limiting is indistinguishable from a blocked scrape; the
		// source just has nothing to contribute this time.
		e.logf("profile fetch blocked url=%s status=%d", profileURL, resp.StatusCode)
		return Empty()
	}
	if resp.StatusCode != http.StatusOK {
		return Errored(fmt.Errorf("fetch %s: status %d", profileURL, resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Errored(fmt.Errorf("parse %s: %w", profileURL, err))
	}

	if doc.Find("form.join-form, .authwall-join-form").Length() > 0 {
		e.logf("profile behind authwall url=%s", profileURL)
		return Empty()
	}

	return OK(CleanText(scrapeProfile(doc)))
}

func scrapeProfile(doc *goquery.Document) string {
	var sb strings.Builder

	writeSel := func(label string, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.First().Text())
		if text == "" {
			return
		}
		if label != "" {
			sb.WriteString(label)
			sb.WriteString(": ")
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	writeSel("Name", doc.Find("h1.top-card-layout__title, h1"))
	writeSel("Headline", doc.Find("h2.top-card-layout__headline"))
	writeSel("About", doc.Find("section.summary div.core-section-container__content, section[data-section=summary]"))

	doc.Find("section.experience li, ul.experience__list li").Each(func(_ int, li *goquery.Selection) {
		title := strings.TrimSpace(li.Find("h3").First().Text())
		org := strings.TrimSpace(li.Find("h4").First().Text())
		if title == "" && org == "" {
			return
		}
		sb.WriteString("Experience: ")
		sb.WriteString(title)
		if org != "" {
			sb.WriteString(" at ")
			sb.WriteString(org)
		}
		sb.WriteString("\n")
	})

	// Structured selectors break whenever LinkedIn reshuffles its markup;
	// fall back to the page's visible text so the source still contributes.
	if strings.TrimSpace(sb.String()) == "" {
		body := doc.Find("body").Clone()
		body.Find("script, style, noscript, nav, footer").Remove()
		return body.Text()
	}
	return sb.String()
}

func isAuthwall(finalURL *url.URL) bool {
	if finalURL == nil {
		return false
	}
	p := finalURL.Path
	return strings.Contains(p, "/authwall") || strings.Contains(p, "/login") || strings.Contains(p, "/signup") || strings.Contains(p, "/checkpoint")
}

func (e *LinkedInExtractor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
