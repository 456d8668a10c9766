package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"podium/internal/domain/profile"
	"podium/internal/extractor"
	"podium/internal/infrastructure/storage"
	"podium/internal/synthesizer"
)

var (
	ErrAllSourcesEmpty = errors.New("no usable content in any provided source")
	ErrSynthesisFailed = errors.New("profile synthesis failed")
)

// CreateProfileInput names the sources for one generation request. All
// fields are optional, but at least one must yield text.
type CreateProfileInput struct {
	FileURLs    []string
	YouTubeURL  string
	WebsiteURL  string
	LinkedInURL string
}

type ProfileUsecase interface {
	Create(ctx context.Context, userID string, in CreateProfileInput) (profile.Generated, error)
	List(ctx context.Context, userID string) ([]profile.Summary, error)
	Get(ctx context.Context, userID, profileID string) (profile.Generated, error)
	Delete(ctx context.Context, userID, profileID string) error
	GetPersonal(ctx context.Context, userID string) (profile.Personal, error)
	SavePersonal(ctx context.Context, userID string, in profile.Personal) (profile.Personal, error)
}

// sourceCollector and profileSynthesizer are the seams tests stub out.
type sourceCollector interface {
	Collect(ctx context.Context, req extractor.Request) extractor.Results
}

type profileSynthesizer interface {
	Synthesize(ctx context.Context, sourceText string) (synthesizer.Profile, error)
}

type Profile struct {
	profiles  profile.Repository
	personals profile.PersonalRepository
	collector sourceCollector
	synth     profileSynthesizer
	store     *storage.Store
}

func NewProfileUsecase(
	profiles profile.Repository,
	personals profile.PersonalRepository,
	collector sourceCollector,
	synth profileSynthesizer,
	store *storage.Store,
) *Profile {
	return &Profile{
		profiles:  profiles,
		personals: personals,
		collector: collector,
		synth:     synth,
		store:     store,
	}
}

// Create runs the whole pipeline: fan the sources out, merge the usable
// text, synthesize, persist. Nothing is written unless synthesis succeeds,
// so a failed request never leaves a partial profile behind.
func (p *Profile) Create(ctx context.Context, userID string, in CreateProfileInput) (profile.Generated, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return profile.Generated{}, ErrUnauthorized
	}

	req := extractor.Request{
		PDFKeys:     p.ownedKeys(owner, in.FileURLs),
		YouTubeURL:  strings.TrimSpace(in.YouTubeURL),
		WebsiteURL:  strings.TrimSpace(in.WebsiteURL),
		LinkedInURL: strings.TrimSpace(in.LinkedInURL),
	}

	results := p.collector.Collect(ctx, req)
	if results.AllEmpty() {
		return profile.Generated{}, ErrAllSourcesEmpty
	}

	synthesized, err := p.synth.Synthesize(ctx, mergeSources(results))
	if err != nil {
		return profile.Generated{}, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	now := time.Now().UTC()
	gen := profile.Generated{
		ID:              uuid.New(),
		UserID:          owner,
		Name:            synthesized.Name,
		Expertise:       synthesized.Expertise,
		TargetAudience:  synthesized.TargetAudience,
		ActivitySummary: synthesized.ActivitySummary,
		PersonalTone:    synthesized.PersonalTone,
		Strengths:       synthesized.Strengths,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := p.profiles.Create(ctx, gen); err != nil {
		return profile.Generated{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return gen, nil
}

func (p *Profile) List(ctx context.Context, userID string) ([]profile.Summary, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	list, err := p.profiles.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return list, nil
}

func (p *Profile) Get(ctx context.Context, userID, profileID string) (profile.Generated, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return profile.Generated{}, ErrUnauthorized
	}
	id, err := uuid.Parse(profileID)
	if err != nil {
		return profile.Generated{}, profile.ErrNotFound
	}

	gen, err := p.profiles.Get(ctx, id, owner)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Generated{}, profile.ErrNotFound
		}
		return profile.Generated{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return gen, nil
}

func (p *Profile) Delete(ctx context.Context, userID, profileID string) error {
	owner, err := parseUserID(userID)
	if err != nil {
		return ErrUnauthorized
	}
	id, err := uuid.Parse(profileID)
	if err != nil {
		return profile.ErrNotFound
	}

	if err := p.profiles.Delete(ctx, id, owner); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return nil
}

func (p *Profile) GetPersonal(ctx context.Context, userID string) (profile.Personal, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return profile.Personal{}, ErrUnauthorized
	}

	pers, err := p.personals.GetByUser(ctx, owner)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Personal{}, profile.ErrNotFound
		}
		return profile.Personal{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return pers, nil
}

func (p *Profile) SavePersonal(ctx context.Context, userID string, in profile.Personal) (profile.Personal, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return profile.Personal{}, ErrUnauthorized
	}

	in.UserID = owner
	saved, err := p.personals.Upsert(ctx, in)
	if err != nil {
		return profile.Personal{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return saved, nil
}

// ownedKeys resolves uploaded-file references to object keys and drops any
// that fall outside the caller's prefix. Foreign references silently
// contribute nothing, consistent with how absent sources behave.
func (p *Profile) ownedKeys(owner uuid.UUID, refs []string) []string {
	prefix := ownerPrefix(owner)
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		key := ref
		if p.store != nil {
			key = p.store.KeyFromURL(ref)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// mergeSources concatenates the usable extractions with source headers so
// the model can tell channel metadata apart from scraped prose.
func mergeSources(r extractor.Results) string {
	var sb strings.Builder
	add := func(label string, res extractor.Result) {
		if !res.IsUsable() {
			return
		}
		sb.WriteString("=== ")
		sb.WriteString(label)
		sb.WriteString(" ===\n")
		sb.WriteString(res.Text)
		sb.WriteString("\n\n")
	}
	add("Documents", r.PDF)
	add("YouTube", r.YouTube)
	add("Website", r.Website)
	add("LinkedIn", r.LinkedIn)
	return strings.TrimSpace(sb.String())
}
