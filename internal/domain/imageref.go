package domain

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ImageRefKind discriminates how an image identifier should be resolved.
type ImageRefKind string

const (
	ImageRefURL  ImageRefKind = "url"
	ImageRefPath ImageRefKind = "path"
)

// ImageRef is the single tagged representation of an image identifier flowing
// between client and server. Clients historically sent bare paths, `file://`
// prefixed paths and full URLs interchangeably; ParseImageRef classifies the
// value exactly once at the API boundary.
type ImageRef struct {
	Kind  ImageRefKind `json:"kind"`
	Value string       `json:"value"`
}

// ParseImageRef classifies a raw image identifier.
func ParseImageRef(raw string) ImageRef {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "file://"):
		return ImageRef{Kind: ImageRefPath, Value: value[len("file://"):]}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return ImageRef{Kind: ImageRefURL, Value: value}
	default:
		return ImageRef{Kind: ImageRefPath, Value: value}
	}
}

// LocalPath resolves the reference to a file below uploadsDir. URL references
// are accepted only when their host is allowlisted (i.e. they point back at
// this deployment's own upload space); anything else is rejected so remote
// fetching never happens implicitly.
func (r ImageRef) LocalPath(uploadsDir string, allowedHosts []string) (string, error) {
	switch r.Kind {
	case ImageRefPath:
		return resolveUploadPath(uploadsDir, r.Value)
	case ImageRefURL:
		parsed, err := url.Parse(r.Value)
		if err != nil {
			return "", fmt.Errorf("%w: malformed image url", ErrValidation)
		}
		host := parsed.Hostname()
		for _, allowed := range allowedHosts {
			if strings.EqualFold(host, allowed) {
				return resolveUploadPath(uploadsDir, parsed.Path)
			}
		}
		return "", fmt.Errorf("%w: remote image sources are not supported", ErrValidation)
	default:
		return "", fmt.Errorf("%w: unknown image reference kind %q", ErrValidation, r.Kind)
	}
}

func resolveUploadPath(uploadsDir, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: image path is required", ErrValidation)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("%w: image path escapes the uploads directory", ErrValidation)
	}
	cleaned := path.Clean(strings.ReplaceAll(value, "\\", "/"))
	trimmed := strings.TrimPrefix(strings.TrimPrefix(cleaned, "/"), "uploads/")
	if trimmed == "" || strings.HasSuffix(trimmed, "/") {
		return "", fmt.Errorf("%w: image path is required", ErrValidation)
	}
	return filepath.Join(uploadsDir, filepath.FromSlash(trimmed)), nil
}
