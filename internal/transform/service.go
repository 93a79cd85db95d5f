package transform

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runrevr/ImageRefresh-sub002/internal/domain"
	"github.com/runrevr/ImageRefresh-sub002/internal/providers/openai"
	"github.com/runrevr/ImageRefresh-sub002/internal/storage"
)

// DefaultSize is substituted whenever a client requests a size outside the
// allowed set.
const DefaultSize = "1024x1024"

// allowedSizes is the fixed set accepted by the provider's edit endpoint.
var allowedSizes = map[string]struct{}{
	"1024x1024": {},
	"1536x1024": {},
	"1024x1536": {},
}

// variationCount is how many output variations one transformation requests.
const variationCount = 2

// Provider is the thin contract the service needs from the OpenAI client.
type Provider interface {
	EditImage(ctx context.Context, req openai.EditRequest) (*openai.EditResponse, error)
	Download(ctx context.Context, url string) ([]byte, error)
	HasCredentials() bool
}

// Request describes one transformation: an optimized local image, the user's
// prompt and the requested output size.
type Request struct {
	ImagePath string
	Prompt    string
	Size      string
}

// Result carries the saved outputs. Primary is a URL-kind reference to the
// first saved image; Paths and URLs list every saved image in order.
type Result struct {
	Primary domain.ImageRef
	URLs    []string
	Paths   []string
}

// Service submits images to the provider and persists the returned results
// under the uploads directory. One synchronous call chain per request: the
// only branching is a single parameter-compatibility fallback when the
// provider rejects the multi-variation parameter.
type Service struct {
	provider Provider
	store    *storage.FileStore
	baseURL  string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires the transformation pipeline.
func NewService(provider Provider, store *storage.FileStore, publicBaseURL string, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeSize validates the requested size against the allowed set and
// falls back to the default square size on mismatch.
func NormalizeSize(size string) string {
	size = strings.ToLower(strings.TrimSpace(size))
	if _, ok := allowedSizes[size]; ok {
		return size
	}
	return DefaultSize
}

// Transform runs one edit call (requesting two variations), saves every
// usable result image and returns their references.
func (s *Service) Transform(ctx context.Context, req Request) (*Result, error) {
	if !s.provider.HasCredentials() {
		return nil, openai.ErrMissingAPIKey
	}
	size := NormalizeSize(req.Size)

	items, err := s.requestVariations(ctx, req, size)
	if err != nil {
		return nil, err
	}

	result, err := s.saveItems(ctx, items)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("saved", len(result.Paths)).
		Str("size", size).
		Msg("transform: completed")
	return result, nil
}

// requestVariations asks for both variations in one call and falls back to
// two single-variation calls when the provider rejects the count parameter.
// This is a compatibility workaround, not a retry policy.
func (s *Service) requestVariations(ctx context.Context, req Request, size string) ([]openai.ImageDatum, error) {
	resp, err := s.provider.EditImage(ctx, openai.EditRequest{
		ImagePath: req.ImagePath,
		Prompt:    req.Prompt,
		N:         variationCount,
		Size:      size,
	})
	if err == nil {
		return resp.Data, nil
	}
	if !openai.IsUnsupportedParameter(err, "n") {
		return nil, wrapProviderError(err)
	}
	s.logger.Warn().Err(err).Msg("transform: provider rejected variation count, splitting into single calls")

	single := openai.EditRequest{ImagePath: req.ImagePath, Prompt: req.Prompt, N: 1, Size: size}
	first, err := s.provider.EditImage(ctx, single)
	if err != nil {
		return nil, wrapProviderError(err)
	}
	items := append([]openai.ImageDatum(nil), first.Data...)
	second, err := s.provider.EditImage(ctx, single)
	if err != nil {
		// The first variation is already in hand, so a partial result beats
		// failing the whole request.
		s.logger.Warn().Err(err).Msg("transform: second variation call failed")
		return items, nil
	}
	return append(items, second.Data...), nil
}

func (s *Service) saveItems(ctx context.Context, items []openai.ImageDatum) (*Result, error) {
	ts := s.now().UnixMilli()
	result := &Result{}
	for i, item := range items {
		data, err := s.itemBytes(ctx, item)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("transform: skipping unusable result item")
			continue
		}
		key := fmt.Sprintf("transformed-%d.png", ts)
		if len(result.Paths) > 0 {
			key = fmt.Sprintf("transformed-%d-%d.png", ts, len(result.Paths))
		}
		saved, err := s.store.Write(ctx, key, data)
		if err != nil {
			return nil, fmt.Errorf("%w: save result: %v", domain.ErrExternalAPI, err)
		}
		result.Paths = append(result.Paths, s.store.Abs(saved))
		result.URLs = append(result.URLs, s.baseURL+"/"+saved)
	}
	if len(result.Paths) == 0 {
		return nil, domain.ErrNoImageReturned
	}
	result.Primary = domain.ImageRef{Kind: domain.ImageRefURL, Value: result.URLs[0]}
	return result, nil
}

func (s *Service) itemBytes(ctx context.Context, item openai.ImageDatum) ([]byte, error) {
	switch {
	case item.URL != "":
		return s.provider.Download(ctx, item.URL)
	case item.B64JSON != "":
		return base64.StdEncoding.DecodeString(item.B64JSON)
	default:
		return nil, fmt.Errorf("result item carries neither url nor inline data")
	}
}

func wrapProviderError(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrExternalAPI, err)
}
