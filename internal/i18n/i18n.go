// Package i18n renders user-facing notices in English or Indonesian.
package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgAuth             = "error.auth"
	MsgInvalidInput     = "error.invalid_input"
	MsgRemote           = "error.remote"
	MsgRateLimited      = "error.rate_limited"
	MsgTimeout          = "error.timeout"
	MsgUnexpectedOutput = "error.unexpected_output"
	MsgIO               = "error.io"
	MsgNotFound         = "error.not_found"
	MsgInternal         = "error.internal"
	MsgNothingToDelete  = "warning.nothing_to_delete"
	MsgSaved            = "notice.saved"
	MsgDeleted          = "notice.deleted"
	MsgPromptSaved      = "notice.prompt_saved"
	MsgSessionEnded     = "notice.session_ended"
)

var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.English: {
		MsgAuth:             "Replicate API token is missing or invalid. Enter a token or set REPLICATE_API_TOKEN.",
		MsgInvalidInput:     "Invalid input: %s",
		MsgRemote:           "Generation failed: %s",
		MsgRateLimited:      "Replicate rate limit reached. Wait a moment and try again.",
		MsgTimeout:          "The output was not ready in time. Please try again.",
		MsgUnexpectedOutput: "The model returned an unexpected output format.",
		MsgIO:               "The output could not be saved locally.",
		MsgNotFound:         "No output has been saved yet.",
		MsgInternal:         "Something went wrong.",
		MsgNothingToDelete:  "No file to delete.",
		MsgSaved:            "Saved %s",
		MsgDeleted:          "Deleted %s",
		MsgPromptSaved:      "Prompt saved to %s",
		MsgSessionEnded:     "Session ended.",
	},
	language.Indonesian: {
		MsgAuth:             "Token API Replicate tidak ada atau tidak valid. Masukkan token atau atur REPLICATE_API_TOKEN.",
		MsgInvalidInput:     "Input tidak valid: %s",
		MsgRemote:           "Pembuatan gagal: %s",
		MsgRateLimited:      "Batas permintaan Replicate tercapai. Tunggu sebentar lalu coba lagi.",
		MsgTimeout:          "Hasil belum siap tepat waktu. Silakan coba lagi.",
		MsgUnexpectedOutput: "Model mengembalikan format keluaran yang tidak terduga.",
		MsgIO:               "Hasil tidak dapat disimpan secara lokal.",
		MsgNotFound:         "Belum ada hasil yang disimpan.",
		MsgInternal:         "Terjadi kesalahan.",
		MsgNothingToDelete:  "Tidak ada file untuk dihapus.",
		MsgSaved:            "Tersimpan %s",
		MsgDeleted:          "Terhapus %s",
		MsgPromptSaved:      "Prompt disimpan ke %s",
		MsgSessionEnded:     "Sesi berakhir.",
	},
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Match picks the supported locale closest to the given preferences, which
// may be bare codes ("id") or Accept-Language headers.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Code returns the short locale code ("en" or "id") for tag.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Printer returns a printer for locale, falling back to English.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(cat))
}

// Sprintf renders key for locale.
func Sprintf(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}

// Title capitalizes words using the casing rules of locale.
func Title(locale, s string) string {
	return cases.Title(Match(locale)).String(s)
}
