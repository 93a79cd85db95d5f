package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxUploadBytes = 15 << 20

var uploadExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type uploadResponse struct {
	ImagePath string `json:"imagePath"`
	ImageURL  string `json:"imageUrl"`
}

// Upload stores a multipart image and returns the path later passed to
// the transform endpoint. The content type comes from sniffing the bytes,
// not from the client-supplied header.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "", "an image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "", "failed to read uploaded image")
		return
	}
	ext, ok := uploadExtensions[http.DetectContentType(data)]
	if !ok {
		a.error(w, http.StatusBadRequest, "", "only png, jpeg and webp images are accepted")
		return
	}

	key := fmt.Sprintf("upload-%d.%s", time.Now().UnixMilli(), ext)
	storedKey, err := a.Store.Write(r.Context(), key, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to store upload")
		a.error(w, http.StatusInternalServerError, "", "failed to store upload")
		return
	}
	a.json(w, http.StatusCreated, uploadResponse{
		ImagePath: "uploads/" + storedKey,
		ImageURL:  strings.TrimRight(a.Config.StorageBaseURL, "/") + "/" + storedKey,
	})
}
