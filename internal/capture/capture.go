// Package capture supplies artifacts to the wizard. It stands in for a
// camera or upload widget: bytes come from files on disk or from base64
// payloads sent by a remote host. Image content is never inspected.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JustZavala/onboard/internal/flow"
)

var (
	ErrEmpty    = errors.New("artifact is empty")
	ErrTooLarge = errors.New("artifact exceeds size limit")
)

// Source produces an artifact from a reference such as a path.
type Source interface {
	Load(ref string) (flow.Artifact, error)
}

// ImageExtensions lists the file types offered by the file picker.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".heic", ".webp", ".pdf"}

// IsImage reports whether path has one of ImageExtensions.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FileSource reads artifacts from the local filesystem.
type FileSource struct {
	MaxBytes int64 // 0 means no limit
}

// Load reads the file at path.
func (s FileSource) Load(path string) (flow.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return flow.Artifact{}, fmt.Errorf("opening artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return flow.Artifact{}, fmt.Errorf("stat artifact: %w", err)
	}
	if info.IsDir() {
		return flow.Artifact{}, fmt.Errorf("%s is a directory", path)
	}
	if s.MaxBytes > 0 && info.Size() > s.MaxBytes {
		return flow.Artifact{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, filepath.Base(path), info.Size(), s.MaxBytes)
	}

	var r io.Reader = f
	if s.MaxBytes > 0 {
		// The file may grow between Stat and Read.
		r = io.LimitReader(f, s.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return flow.Artifact{}, fmt.Errorf("reading artifact: %w", err)
	}
	return check(filepath.Base(path), data, s.MaxBytes)
}

// DecodeBase64 turns a base64 payload into an artifact named name.
// Standard and URL-safe alphabets, padded or not, are accepted.
func DecodeBase64(name, payload string, maxBytes int64) (flow.Artifact, error) {
	payload = strings.TrimSpace(payload)
	// Strip a data URL prefix such as "data:image/png;base64,".
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}

	var data []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err = enc.DecodeString(payload); err == nil {
			break
		}
	}
	if err != nil {
		return flow.Artifact{}, fmt.Errorf("decoding base64 artifact: %w", err)
	}
	return check(name, data, maxBytes)
}

func check(name string, data []byte, maxBytes int64) (flow.Artifact, error) {
	if len(data) == 0 {
		return flow.Artifact{}, fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return flow.Artifact{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxBytes)
	}
	return flow.Artifact{Name: name, Data: data}, nil
}
