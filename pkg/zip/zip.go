package zip

import (
	"archive/zip"
	"bytes"
)

// Asset is one file to include in a download archive.
type Asset struct {
	Filename string
	Data     []byte
}

// ArchiveAssets packs the assets into an in-memory zip archive. Assets with
// no data are skipped.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		w, err := zw.Create(asset.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
