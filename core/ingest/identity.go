package ingest

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

var slugStripRegex = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// GenerateBookID derives an identity for books with no OpenITI URI: a title
// slug joined to a short content hash. The hash input includes the wall
// clock, so two ingestions of the same titleless file yield distinct ids.
func GenerateBookID(title, author string, authorDeath int) string {
	slug := slugStripRegex.ReplaceAllString(strings.ReplaceAll(title, " ", "_"), "")
	runes := []rune(slug)
	if len(runes) > 30 {
		slug = string(runes[:30])
	}

	h := blake3.New()
	fmt.Fprintf(h, "%s|%s|%d|%d", title, author, authorDeath, time.Now().UnixNano())
	sum := h.Sum(nil)

	return slug + "_" + hex.EncodeToString(sum[:4])
}
