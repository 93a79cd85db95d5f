package domain

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseImageRef(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		wantKind ImageRefKind
		wantVal  string
	}{
		{name: "bare path", raw: "uploads/upload-1.png", wantKind: ImageRefPath, wantVal: "uploads/upload-1.png"},
		{name: "file prefix", raw: "file:///uploads/upload-1.png", wantKind: ImageRefPath, wantVal: "/uploads/upload-1.png"},
		{name: "http url", raw: "http://localhost:8080/uploads/upload-1.png", wantKind: ImageRefURL, wantVal: "http://localhost:8080/uploads/upload-1.png"},
		{name: "https url", raw: "https://cdn.example.com/a.png", wantKind: ImageRefURL, wantVal: "https://cdn.example.com/a.png"},
		{name: "whitespace", raw: "  /uploads/a.png ", wantKind: ImageRefPath, wantVal: "/uploads/a.png"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref := ParseImageRef(tc.raw)
			if ref.Kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", ref.Kind, tc.wantKind)
			}
			if ref.Value != tc.wantVal {
				t.Fatalf("value = %q, want %q", ref.Value, tc.wantVal)
			}
		})
	}
}

func TestImageRefLocalPath(t *testing.T) {
	allowed := []string{"localhost"}
	testCases := []struct {
		name    string
		ref     ImageRef
		want    string
		wantErr bool
	}{
		{name: "upload path", ref: ImageRef{Kind: ImageRefPath, Value: "/uploads/upload-1.png"}, want: filepath.Join("uploads", "upload-1.png")},
		{name: "relative path", ref: ImageRef{Kind: ImageRefPath, Value: "uploads/temp-2.png"}, want: filepath.Join("uploads", "temp-2.png")},
		{name: "own url", ref: ImageRef{Kind: ImageRefURL, Value: "http://localhost:8080/uploads/upload-1.png"}, want: filepath.Join("uploads", "upload-1.png")},
		{name: "foreign url", ref: ImageRef{Kind: ImageRefURL, Value: "https://cdn.example.com/a.png"}, wantErr: true},
		{name: "traversal", ref: ImageRef{Kind: ImageRefPath, Value: "/uploads/../../etc/passwd"}, wantErr: true},
		{name: "empty", ref: ImageRef{Kind: ImageRefPath, Value: ""}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.LocalPath("uploads", allowed)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalPath: %v", err)
			}
			if got != tc.want {
				t.Fatalf("path = %q, want %q", got, tc.want)
			}
		})
	}
}
