package extractor

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"podium/internal/infrastructure/cache"
)

// Status tags a single extractor outcome. Errors are recorded, never
// propagated: one bad source must not abort profile creation.
type Status int

const (
	StatusEmpty Status = iota
	StatusOK
	StatusError
)

type Result struct {
	Status Status
	Text   string
	Err    error
}

func OK(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Empty()
	}
	return Result{Status: StatusOK, Text: text}
}

func Empty() Result {
	return Result{Status: StatusEmpty}
}

func Errored(err error) Result {
	return Result{Status: StatusError, Err: err}
}

// IsUsable reports whether the result carries text for the synthesizer.
func (r Result) IsUsable() bool {
	return r.Status == StatusOK && strings.TrimSpace(r.Text) != ""
}

// Extractor turns one external source reference into plain text.
type Extractor interface {
	Extract(ctx context.Context, ref string) Result
}

// Request names the source references for one profile-creation call.
type Request struct {
	PDFKeys     []string
	YouTubeURL  string
	WebsiteURL  string
	LinkedInURL string
}

// Results holds the settled outcome of every source.
type Results struct {
	PDF      Result
	YouTube  Result
	Website  Result
	LinkedIn Result
}

func (r Results) AllEmpty() bool {
	return !r.PDF.IsUsable() && !r.YouTube.IsUsable() && !r.Website.IsUsable() && !r.LinkedIn.IsUsable()
}

const urlCacheTTL = 10 * time.Minute

// Collector fans the four extractors out concurrently and waits for all of
// them to settle regardless of individual outcome. URL-based results are
// cached in Redis so a retried request does not refetch unchanged sources.
type Collector struct {
	PDF      Extractor
	YouTube  Extractor
	Website  Extractor
	LinkedIn Extractor

	Timeout time.Duration
	Cache   *cache.Redis
	Logger  *log.Logger
}

func (c *Collector) Collect(ctx context.Context, req Request) Results {
	var (
		wg  sync.WaitGroup
		res Results
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		res.PDF = c.collectPDFs(ctx, req.PDFKeys)
	}()
	go func() {
		defer wg.Done()
		res.YouTube = c.collectURL(ctx, "youtube", c.YouTube, req.YouTubeURL)
	}()
	go func() {
		defer wg.Done()
		res.Website = c.collectURL(ctx, "website", c.Website, req.WebsiteURL)
	}()
	go func() {
		defer wg.Done()
		res.LinkedIn = c.collectURL(ctx, "linkedin", c.LinkedIn, req.LinkedInURL)
	}()
	wg.Wait()

	return res
}

// collectPDFs extracts every PDF sequentially and concatenates the usable
// texts. A failing file is logged and skipped.
func (c *Collector) collectPDFs(ctx context.Context, keys []string) Result {
	if len(keys) == 0 || c.PDF == nil {
		return Empty()
	}

	var parts []string
	var lastErr error
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		r := c.extractOne(ctx, c.PDF, key)
		switch r.Status {
		case StatusOK:
			parts = append(parts, r.Text)
		case StatusError:
			lastErr = r.Err
			c.logf("pdf extract failed key=%s: %v", key, r.Err)
		}
	}

	if len(parts) == 0 {
		if lastErr != nil {
			return Errored(lastErr)
		}
		return Empty()
	}
	return OK(strings.Join(parts, "\n\n"))
}

func (c *Collector) collectURL(ctx context.Context, kind string, ext Extractor, ref string) Result {
	ref = strings.TrimSpace(ref)
	if ref == "" || ext == nil {
		return Empty()
	}

	cacheKey := "extract:" + kind + ":" + ref
	if c.Cache != nil {
		var cached string
		if hit, _ := c.Cache.GetJSON(ctx, cacheKey, &cached); hit && cached != "" {
			return OK(cached)
		}
	}

	r := c.extractOne(ctx, ext, ref)
	if r.Status == StatusError {
		c.logf("%s extract failed ref=%s: %v", kind, ref, r.Err)
	}

	if r.IsUsable() && c.Cache != nil {
		_ = c.Cache.SetJSON(ctx, cacheKey, r.Text, urlCacheTTL)
	}
	return r
}

func (c *Collector) extractOne(ctx context.Context, ext Extractor, ref string) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	extCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return ext.Extract(extCtx, ref)
}

func (c *Collector) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
