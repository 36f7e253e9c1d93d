// Package arabic normalizes Arabic text into a canonical search form.
//
// Written Arabic varies orthographically: diacritics are optional, the
// alef-hamza forms are used interchangeably, and ة/ه and ى/ي are commonly
// confused. Collapsing these variants lets the full-text index match
// diacritic- and spelling-insensitively without a morphological analyzer.
// The output is for indexing and querying only, never for display.
package arabic

import (
	"regexp"
	"strings"
)

// tashkeelRegex matches the Arabic combining diacritic block (U+064B-U+065F)
// plus the superscript alef (U+0670).
var tashkeelRegex = regexp.MustCompile("[ً-ٰٟ]")

// letterReplacer collapses orthographic letter variants. It is applied after
// diacritic removal so the variant forms are bare letters by the time the
// substitutions run.
var letterReplacer = strings.NewReplacer(
	"ـ", "", // tatweel (kashida)
	"أ", "ا", // أ → ا (alef with hamza above)
	"إ", "ا", // إ → ا (alef with hamza below)
	"آ", "ا", // آ → ا (alef with madda)
	"ٱ", "ا", // ٱ → ا (alef wasla)
	"ى", "ي", // ى → ي (alef maqsura)
	"ة", "ه", // ة → ه (taa marbuta)
	"ؤ", "و", // ؤ → و (waw with hamza)
	"ئ", "ي", // ئ → ي (yaa with hamza)
)

// Normalize returns the canonical search form of text. It is total and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = tashkeelRegex.ReplaceAllString(text, "")
	return letterReplacer.Replace(text)
}
