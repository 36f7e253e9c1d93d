package ingest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/charmap"

	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/metadata"
)

var plainExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// innerName returns the logical book file name with any .xz layer peeled
// off, and whether the file is xz-compressed.
func innerName(name string) (string, bool) {
	if strings.HasSuffix(strings.ToLower(name), ".xz") {
		return name[:len(name)-len(".xz")], true
	}
	return name, false
}

// acceptable reports whether name looks like a book file: a known plain-text
// extension, or an extensionless OpenITI-shaped name, optionally
// xz-compressed.
func acceptable(name string) bool {
	inner, _ := innerName(name)
	ext := strings.ToLower(filepath.Ext(inner))
	if plainExtensions[ext] {
		return true
	}
	return metadata.ParseFilename(inner) != nil
}

// readBookText loads a book file, transparently decompressing xz and
// decoding the bytes as UTF-8 with a Windows-1256 fallback for legacy
// Arabic files.
func readBookText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", gerrors.NewPersistence("read", err)
	}
	if _, compressed := innerName(filepath.Base(path)); compressed {
		r, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", gerrors.NewParse("xz", path, "corrupt compressed stream")
		}
		raw, err = io.ReadAll(r)
		if err != nil {
			return "", gerrors.NewParse("xz", path, "truncated compressed stream")
		}
	}
	return decodeText(path, raw)
}

func decodeText(path string, raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1256.NewDecoder().Bytes(raw)
	if err != nil {
		return "", gerrors.NewEncoding(path, err)
	}
	return string(decoded), nil
}

// readPreview returns up to limit bytes of decoded text, enough for subject
// sniffing without loading a whole corpus file.
func readPreview(path string, limit int) string {
	text, err := readBookText(path)
	if err != nil {
		return ""
	}
	if len(text) > limit {
		// Back off to a rune boundary so the preview stays valid UTF-8.
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
