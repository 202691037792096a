package i18n

import "embed"

// Locales holds the bundled message catalogs, one JSON object per language.
//
//go:embed locales/*.json
var Locales embed.FS
