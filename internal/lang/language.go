// Package lang validates language hints before they are sent to the
// transcription service. Catching a bad code at the CLI boundary is
// cheaper than a rejected upload.
package lang

import (
	"fmt"
	"strings"
)

// supported holds the ISO 639-1 base codes the transcription backend
// accepts. Locale variants ("pt-BR", "zh_CN") are reduced to their base
// code before lookup, so only base codes appear here.
var supported = map[string]struct{}{
	"af": {}, "ar": {}, "bg": {}, "bn": {}, "ca": {}, "cs": {}, "da": {},
	"de": {}, "el": {}, "en": {}, "es": {}, "et": {}, "fa": {}, "fi": {},
	"fr": {}, "gu": {}, "he": {}, "hi": {}, "hr": {}, "hu": {}, "id": {},
	"it": {}, "ja": {}, "kn": {}, "ko": {}, "lt": {}, "lv": {}, "mk": {},
	"ml": {}, "mr": {}, "ms": {}, "nl": {}, "no": {}, "pa": {}, "pl": {},
	"pt": {}, "ro": {}, "ru": {}, "sk": {}, "sl": {}, "sr": {}, "sv": {},
	"sw": {}, "ta": {}, "te": {}, "th": {}, "tl": {}, "tr": {}, "uk": {},
	"ur": {}, "vi": {}, "zh": {},
}

// Normalize lowercases a language code and rewrites underscore locale
// separators to hyphens: "PT_BR" and "pt-BR" both become "pt-br".
func Normalize(code string) string {
	return strings.ReplaceAll(strings.ToLower(code), "_", "-")
}

// Validate checks a language hint against the supported ISO 639-1 set.
// Locale variants pass when their base code is supported, and the empty
// string passes because it means auto-detect. Failures wrap ErrInvalid.
func Validate(code string) error {
	if code == "" {
		return nil
	}
	if _, ok := supported[BaseCode(code)]; !ok {
		return fmt.Errorf("%w: %q is not an ISO 639-1 code the service accepts (examples: en, fr, pt-BR)",
			ErrInvalid, code)
	}
	return nil
}

// BaseCode reduces a locale to its ISO 639-1 base: "pt-BR" -> "pt",
// "zh_Hans_CN" -> "zh". Bare codes and the empty string pass through.
// The service accepts base codes only.
func BaseCode(code string) string {
	base, _, _ := strings.Cut(Normalize(code), "-")
	return base
}
