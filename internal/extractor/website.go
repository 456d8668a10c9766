package extractor

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// minRenderedChars is the point below which a fetched page is assumed to
// be client-rendered and retried headlessly.
const minRenderedChars = 200

var skipURLRe = regexp.MustCompile(`(?i)(\.pdf|\.jpe?g|\.png|\.gif|\.css|\.js|\.xml|\.rss)$|/tag/|/category/|/author/|/feed/|/wp-content/|/wp-includes/|/wp-admin/`)

var importantURLRe = regexp.MustCompile(`(?i)/about|/bio|/profile|/team|/services|/speak(ing|er)|/events|/topics|/expertise|/keynote|/portfolio|/work|/projects|/contact|/blog`)

// WebsiteExtractor crawls a bounded set of same-domain pages starting from
// the given URL and returns their visible text. Pages that come back nearly
// empty are refetched through a headless browser, covering client-rendered
// sites.
type WebsiteExtractor struct {
	maxPages int
	timeout  time.Duration
	logger   *log.Logger

	// headless is swapped in tests to avoid launching a browser.
	headless func(ctx context.Context, pageURL string) (string, error)
}

func NewWebsiteExtractor(maxPages int, timeout time.Duration, logger *log.Logger) *WebsiteExtractor {
	if maxPages <= 0 {
		maxPages = 10
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &WebsiteExtractor{
		maxPages: maxPages,
		timeout:  timeout,
		logger:   logger,
		headless: renderHeadless,
	}
}

func (e *WebsiteExtractor) Extract(ctx context.Context, startURL string) Result {
	startURL = strings.TrimSpace(startURL)
	parsed, err := url.Parse(startURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Errored(fmt.Errorf("invalid website URL: %s", startURL))
	}

	host := parsed.Hostname()
	text, links, err := e.fetchPage(ctx, host, startURL)
	if err != nil {
		return Errored(fmt.Errorf("fetch %s: %w", startURL, err))
	}

	if len(strings.TrimSpace(text)) < minRenderedChars && e.headless != nil {
		if rendered, rerr := e.headless(ctx, startURL); rerr == nil && len(rendered) > len(text) {
			text = rendered
		} else if rerr != nil && e.logger != nil {
			e.logger.Printf("headless render failed url=%s: %v", startURL, rerr)
		}
	}

	var parts []string
	if strings.TrimSpace(text) != "" {
		parts = append(parts, text)
	}

	visited := map[string]bool{canonicalURL(startURL): true}
	for _, link := range orderLinks(links) {
		if ctx.Err() != nil {
			break
		}
		if len(visited) >= e.maxPages {
			break
		}
		key := canonicalURL(link)
		if visited[key] {
			continue
		}
		visited[key] = true

		pageText, _, err := e.fetchPage(ctx, host, link)
		if err != nil {
			if e.logger != nil {
				e.logger.Printf("crawl page failed url=%s: %v", link, err)
			}
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			parts = append(parts, pageText)
		}
	}

	return OK(CleanText(strings.Join(parts, "\n\n")))
}

// fetchPage fetches a single page and returns its visible text and the
// same-domain links it references. allowedHost is the bare hostname; colly
// matches allowed domains without the port.
func (e *WebsiteExtractor) fetchPage(ctx context.Context, allowedHost, pageURL string) (string, []string, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(allowedHost),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(e.timeout)

	var text string
	var links []string

	c.OnHTML("html", func(el *colly.HTMLElement) {
		sel := el.DOM
		sel.Find("script, style, noscript, iframe, svg").Remove()
		text = sel.Text()
	})
	c.OnHTML("a[href]", func(el *colly.HTMLElement) {
		href := el.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		abs := el.Request.AbsoluteURL(href)
		if abs == "" || skipURLRe.MatchString(abs) {
			return
		}
		if u, err := url.Parse(abs); err != nil || u.Hostname() != allowedHost {
			return
		}
		links = append(links, abs)
	})

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := c.Visit(pageURL); err != nil {
		return "", nil, err
	}
	c.Wait()

	return text, links, nil
}

// orderLinks puts likely-biographical pages first so a small page budget
// is spent on content worth synthesizing from.
func orderLinks(links []string) []string {
	seen := map[string]bool{}
	unique := make([]string, 0, len(links))
	for _, l := range links {
		key := canonicalURL(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, l)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return importantURLRe.MatchString(unique[i]) && !importantURLRe.MatchString(unique[j])
	})
	return unique
}

func canonicalURL(u string) string {
	u = strings.TrimSuffix(strings.TrimSpace(u), "/")
	if i := strings.IndexAny(u, "#"); i >= 0 {
		u = u[:i]
	}
	return u
}

func renderHeadless(ctx context.Context, pageURL string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var text string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}
