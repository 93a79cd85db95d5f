package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
	"github.com/runrevr/ImageRefresh-sub002/internal/storage"
)

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newUploadApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	app := &App{
		Config: &infra.Config{UploadsDir: dir, StorageBaseURL: "http://localhost:5000/uploads"},
		Logger: zerolog.Nop(),
		Store:  store,
	}
	return app, dir
}

func TestUpload_StoresPNG(t *testing.T) {
	app, dir := newUploadApp(t)
	body, contentType := multipartImage(t, "image", "photo.png", pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.Upload(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp uploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.ImagePath, "uploads/upload-") || !strings.HasSuffix(resp.ImagePath, ".png") {
		t.Fatalf("unexpected image path: %q", resp.ImagePath)
	}
	if !strings.HasPrefix(resp.ImageURL, "http://localhost:5000/uploads/upload-") {
		t.Fatalf("unexpected image url: %q", resp.ImageURL)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stored files = %d, want 1", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".png" {
		t.Fatalf("stored file = %q, want .png", entries[0].Name())
	}
}

func TestUpload_RejectsNonImagePayload(t *testing.T) {
	app, dir := newUploadApp(t)
	body, contentType := multipartImage(t, "image", "notes.txt", []byte("plain text, not an image"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("stored files = %d, want 0", len(entries))
	}
}

func TestUpload_RequiresImageField(t *testing.T) {
	app, _ := newUploadApp(t)
	body, contentType := multipartImage(t, "file", "photo.png", pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
