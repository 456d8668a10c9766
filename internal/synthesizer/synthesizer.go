package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"podium/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// ErrParse means the model answered but the reply did not follow the
// requested template. ErrUpstream means the API itself failed.
var (
	ErrParse    = errors.New("could not parse model output into a profile")
	ErrUpstream = errors.New("language model request failed")
)

const maxRetries = 2

// Profile is the structured output of one synthesis call.
type Profile struct {
	Name            string
	Expertise       []string
	TargetAudience  []string
	ActivitySummary string
	PersonalTone    string
	Strengths       []string
}

// chatClient is the slice of the OpenAI client the synthesizer uses;
// tests substitute a canned implementation.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Synthesizer turns the merged source text into a structured speaker
// profile with a single chat-completion call.
type Synthesizer struct {
	client chatClient
	cfg    config.OpenAIConfig
	logger *log.Logger

	// sleep is swapped in tests so retry backoff does not stall them.
	sleep func(time.Duration)
}

func New(cfg config.OpenAIConfig, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// NewWithClient is the test constructor.
func NewWithClient(client chatClient, cfg config.OpenAIConfig, logger *log.Logger) *Synthesizer {
	return &Synthesizer{client: client, cfg: cfg, logger: logger, sleep: time.Sleep}
}

// Synthesize sends the source text to the model and parses the templated
// reply. Transient API failures are retried up to maxRetries times; a
// malformed reply is retried the same way before giving up with ErrParse.
func (s *Synthesizer) Synthesize(ctx context.Context, sourceText string) (Profile, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(sourceText)},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			s.logf("synthesis retry attempt=%d cause=%v", attempt, lastErr)
			s.sleep(time.Duration(attempt) * time.Second)
		}
		if err := ctx.Err(); err != nil {
			return Profile{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		resp, err := s.call(ctx, req)
		if err != nil {
			lastErr = err
			if isRetryable(err) {
				continue
			}
			return Profile{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("empty choices")
			continue
		}

		p, err := ParseProfile(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			continue
		}
		return p, nil
	}

	if errors.Is(lastErr, ErrParse) {
		return Profile{}, lastErr
	}
	return Profile{}, fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

func (s *Synthesizer) call(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.client.CreateChatCompletion(ctx, req)
}

const systemPrompt = "You are an assistant that builds concise professional speaker profiles from raw biographical material."

func buildPrompt(sourceText string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the text between the markers and produce a speaker profile. ")
	sb.WriteString("Answer with exactly this template, keeping the bold labels:\n\n")
	sb.WriteString("**Name:** <full name>\n")
	sb.WriteString("**Expertise:** <comma-separated list>\n")
	sb.WriteString("**Target audience:** <comma-separated list>\n")
	sb.WriteString("**Activity summary:** <2-4 sentences>\n")
	sb.WriteString("**Personal tone:** <1-2 sentences>\n")
	sb.WriteString("**Strengths:** <comma-separated list>\n\n")
	sb.WriteString("[start text]\n")
	sb.WriteString(sourceText)
	sb.WriteString("\n[end text]\n")
	return sb.String()
}

var fieldRe = regexp.MustCompile(`(?mi)^\s*\*\*\s*(name|expertise|target audience|activity summary|personal tone|strengths)\s*:?\s*\*\*:?\s*(.*)$`)

// ParseProfile extracts the six labelled fields from a model reply. The
// value of a field runs until the next label. Missing fields are left
// zero; a reply where nothing matches is a parse failure.
func ParseProfile(raw string) (Profile, error) {
	matches := fieldRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return Profile{}, fmt.Errorf("%w: no labelled fields found", ErrParse)
	}

	var p Profile
	for i, m := range matches {
		label := strings.ToLower(raw[m[2]:m[3]])
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		value := strings.TrimSpace(raw[m[4]:end])

		switch label {
		case "name":
			p.Name = value
		case "expertise":
			p.Expertise = splitList(value)
		case "target audience":
			p.TargetAudience = splitList(value)
		case "activity summary":
			p.ActivitySummary = value
		case "personal tone":
			p.PersonalTone = value
		case "strengths":
			p.Strengths = splitList(value)
		}
	}

	if p.Name == "" && len(p.Expertise) == 0 && len(p.TargetAudience) == 0 &&
		p.ActivitySummary == "" && p.PersonalTone == "" && len(p.Strengths) == 0 {
		return Profile{}, fmt.Errorf("%w: all fields empty", ErrParse)
	}
	return p, nil
}

func splitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), ".")
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable:
			return true
		}
		return false
	}
	// Network-level failures without an API status are worth one more try.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (s *Synthesizer) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
