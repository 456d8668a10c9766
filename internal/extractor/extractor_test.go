package extractor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type stubExtractor struct {
	result Result
	calls  atomic.Int32
}

func (s *stubExtractor) Extract(context.Context, string) Result {
	s.calls.Add(1)
	return s.result
}

func TestCollectorFansOutAllSources(t *testing.T) {
	pdf := &stubExtractor{result: OK("pdf text")}
	yt := &stubExtractor{result: OK("youtube text")}
	web := &stubExtractor{result: OK("website text")}
	li := &stubExtractor{result: OK("linkedin text")}

	c := &Collector{PDF: pdf, YouTube: yt, Website: web, LinkedIn: li, Timeout: time.Second}
	res := c.Collect(context.Background(), Request{
		PDFKeys:     []string{"u/pdf/a.pdf"},
		YouTubeURL:  "https://www.youtube.com/@x",
		WebsiteURL:  "https://example.com",
		LinkedInURL: "https://linkedin.com/in/x",
	})

	if !res.PDF.IsUsable() || !res.YouTube.IsUsable() || !res.Website.IsUsable() || !res.LinkedIn.IsUsable() {
		t.Fatalf("expected all sources usable: %+v", res)
	}
	if res.AllEmpty() {
		t.Fatalf("expected AllEmpty false")
	}
}

func TestCollectorSkipsAbsentSources(t *testing.T) {
	yt := &stubExtractor{result: OK("youtube text")}
	c := &Collector{YouTube: yt, Timeout: time.Second}

	res := c.Collect(context.Background(), Request{YouTubeURL: "https://www.youtube.com/@x"})

	if res.PDF.Status != StatusEmpty || res.Website.Status != StatusEmpty || res.LinkedIn.Status != StatusEmpty {
		t.Fatalf("expected absent sources empty: %+v", res)
	}
	if !res.YouTube.IsUsable() {
		t.Fatalf("expected youtube usable")
	}
}

func TestCollectorFailureIsSoft(t *testing.T) {
	web := &stubExtractor{result: Errored(errors.New("boom"))}
	li := &stubExtractor{result: OK("linkedin text")}
	c := &Collector{Website: web, LinkedIn: li, Timeout: time.Second}

	res := c.Collect(context.Background(), Request{
		WebsiteURL:  "https://example.com",
		LinkedInURL: "https://linkedin.com/in/x",
	})

	if res.Website.Status != StatusError {
		t.Fatalf("expected website errored, got %v", res.Website.Status)
	}
	if !res.LinkedIn.IsUsable() {
		t.Fatalf("a failing source must not poison the others")
	}
	if res.AllEmpty() {
		t.Fatalf("expected AllEmpty false with one usable source")
	}
}

func TestCollectorAllEmptyWhenEverythingFails(t *testing.T) {
	bad := &stubExtractor{result: Errored(errors.New("boom"))}
	c := &Collector{PDF: bad, YouTube: bad, Website: bad, LinkedIn: bad, Timeout: time.Second}

	res := c.Collect(context.Background(), Request{
		PDFKeys:     []string{"u/pdf/a.pdf"},
		YouTubeURL:  "y",
		WebsiteURL:  "w",
		LinkedInURL: "l",
	})

	if !res.AllEmpty() {
		t.Fatalf("expected AllEmpty true: %+v", res)
	}
}

func TestCollectPDFsConcatenatesAndSkipsFailures(t *testing.T) {
	calls := 0
	pdf := extractorFunc(func(_ context.Context, key string) Result {
		calls++
		if key == "u/pdf/bad.pdf" {
			return Errored(errors.New("corrupt"))
		}
		return OK("text from " + key)
	})

	c := &Collector{PDF: pdf, Timeout: time.Second}
	res := c.collectPDFs(context.Background(), []string{"u/pdf/a.pdf", "u/pdf/bad.pdf", "u/pdf/b.pdf"})

	if calls != 3 {
		t.Fatalf("expected 3 extractions, got %d", calls)
	}
	if !res.IsUsable() {
		t.Fatalf("expected usable result: %+v", res)
	}
	if !strings.Contains(res.Text, "a.pdf") || !strings.Contains(res.Text, "b.pdf") {
		t.Fatalf("expected both good files in output: %q", res.Text)
	}
	if strings.Contains(res.Text, "bad.pdf") {
		t.Fatalf("failed file leaked into output: %q", res.Text)
	}
}

func TestCollectPDFsAllFailing(t *testing.T) {
	pdf := &stubExtractor{result: Errored(errors.New("corrupt"))}
	c := &Collector{PDF: pdf, Timeout: time.Second}

	res := c.collectPDFs(context.Background(), []string{"u/pdf/a.pdf"})
	if res.Status != StatusError {
		t.Fatalf("expected error status, got %v", res.Status)
	}
}

func TestOKWithBlankTextIsEmpty(t *testing.T) {
	if r := OK("   \n "); r.Status != StatusEmpty {
		t.Fatalf("expected blank OK to normalize to empty, got %v", r.Status)
	}
}

type extractorFunc func(ctx context.Context, ref string) Result

func (f extractorFunc) Extract(ctx context.Context, ref string) Result { return f(ctx, ref) }
