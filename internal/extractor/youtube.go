package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	recentVideoCount  = 10
	popularVideoCount = 5
)

// channelRef is a parsed channel URL: exactly one of the fields is set.
type channelRef struct {
	ID       string
	Username string
	Handle   string
}

var (
	channelIDRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/channel/([^/?&]+)`)
	customRe    = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/c/([^/?&]+)`)
	userRe      = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/user/([^/?&]+)`)
	handleRe    = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/@([^/?&]+)`)
)

// YouTubeExtractor fetches channel metadata plus recent and top-viewed
// video titles/descriptions through the YouTube Data API and flattens them
// into one text block.
type YouTubeExtractor struct {
	apiKey string

	// newService is swapped in tests.
	newService func(ctx context.Context) (*youtube.Service, error)
}

func NewYouTubeExtractor(apiKey string) *YouTubeExtractor {
	e := &YouTubeExtractor{apiKey: apiKey}
	e.newService = func(ctx context.Context) (*youtube.Service, error) {
		return youtube.NewService(ctx, option.WithAPIKey(e.apiKey))
	}
	return e
}

func (e *YouTubeExtractor) Extract(ctx context.Context, channelURL string) Result {
	if strings.TrimSpace(e.apiKey) == "" {
		return Empty()
	}

	ref, err := ParseChannelURL(channelURL)
	if err != nil {
		return Errored(err)
	}

	svc, err := e.newService(ctx)
	if err != nil {
		return Errored(fmt.Errorf("youtube service: %w", err))
	}

	call := svc.Channels.List([]string{"snippet", "contentDetails", "statistics"})
	switch {
	case ref.ID != "":
		call = call.Id(ref.ID)
	case ref.Username != "":
		call = call.ForUsername(ref.Username)
	default:
		call = call.ForHandle("@" + ref.Handle)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return Errored(fmt.Errorf("channel lookup: %w", err))
	}
	if len(resp.Items) == 0 {
		return Errored(fmt.Errorf("no channel for %s", channelURL))
	}
	ch := resp.Items[0]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Channel: %s\n", ch.Snippet.Title)
	if ch.Snippet.Description != "" {
		sb.WriteString(ch.Snippet.Description)
		sb.WriteString("\n\n")
	}
	if ch.Statistics != nil {
		fmt.Fprintf(&sb, "Subscribers: %d, videos: %d\n\n", ch.Statistics.SubscriberCount, ch.Statistics.VideoCount)
	}

	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		e.appendRecentVideos(ctx, svc, ch.ContentDetails.RelatedPlaylists.Uploads, &sb)
	}
	e.appendPopularVideos(ctx, svc, ch.Id, &sb)

	return OK(CleanText(sb.String()))
}

func (e *YouTubeExtractor) appendRecentVideos(ctx context.Context, svc *youtube.Service, uploadsPlaylist string, sb *strings.Builder) {
	if uploadsPlaylist == "" {
		return
	}

	resp, err := svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(uploadsPlaylist).
		MaxResults(recentVideoCount).
		Context(ctx).Do()
	if err != nil {
		return
	}

	ids := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ContentDetails != nil {
			ids = append(ids, it.ContentDetails.VideoId)
		}
	}
	e.appendVideoDetails(ctx, svc, ids, "Recent videos:", sb)
}

func (e *YouTubeExtractor) appendPopularVideos(ctx context.Context, svc *youtube.Service, channelID string, sb *strings.Builder) {
	if channelID == "" {
		return
	}

	search, err := svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		Type("video").
		Order("viewCount").
		MaxResults(popularVideoCount).
		Context(ctx).Do()
	if err != nil {
		return
	}

	ids := make([]string, 0, len(search.Items))
	for _, it := range search.Items {
		if it.Id != nil && it.Id.VideoId != "" {
			ids = append(ids, it.Id.VideoId)
		}
	}
	e.appendVideoDetails(ctx, svc, ids, "Most viewed videos:", sb)
}

func (e *YouTubeExtractor) appendVideoDetails(ctx context.Context, svc *youtube.Service, ids []string, header string, sb *strings.Builder) {
	if len(ids) == 0 {
		return
	}

	resp, err := svc.Videos.List([]string{"snippet"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return
	}

	sb.WriteString(header)
	sb.WriteString("\n")
	for _, v := range resp.Items {
		fmt.Fprintf(sb, "- %s\n", v.Snippet.Title)
		if v.Snippet.Description != "" {
			sb.WriteString(v.Snippet.Description)
			sb.WriteString("\n")
		}
		if len(v.Snippet.Tags) > 0 {
			fmt.Fprintf(sb, "Tags: %s\n", strings.Join(v.Snippet.Tags, ", "))
		}
	}
	sb.WriteString("\n")
}

// ParseChannelURL accepts the four public channel URL forms:
// /channel/<id>, /c/<name>, /user/<name>, /@<handle>.
func ParseChannelURL(channelURL string) (channelRef, error) {
	channelURL = strings.TrimSpace(channelURL)

	if m := channelIDRe.FindStringSubmatch(channelURL); m != nil {
		return channelRef{ID: m[1]}, nil
	}
	if m := userRe.FindStringSubmatch(channelURL); m != nil {
		return channelRef{Username: m[1]}, nil
	}
	if m := handleRe.FindStringSubmatch(channelURL); m != nil {
		return channelRef{Handle: m[1]}, nil
	}
	if m := customRe.FindStringSubmatch(channelURL); m != nil {
		// Custom /c/ names resolve through the handle lookup.
		return channelRef{Handle: m[1]}, nil
	}

	return channelRef{}, fmt.Errorf("not a recognized channel URL: %s", channelURL)
}
