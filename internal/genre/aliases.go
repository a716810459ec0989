package genre

// aliases maps common spellings to a canonical slug.
var aliases = map[string]string{
	"sci-fi":             "science-fiction",
	"scifi":              "science-fiction",
	"sf":                 "science-fiction",
	"literature-fiction": "fiction",
	"literature":         "fiction",
	"literary-fiction":   "fiction",
	"ya":                 "young-adult",
	"teen":               "young-adult",
	"teens-young-adult":  "young-adult",
	"high-fantasy":       "epic-fantasy",
	"suspense":           "thriller",
	"mystery-thriller":   "mystery",
	"crime":              "mystery",
	"self-help":          "self-help",
	"selfhelp":           "self-help",
	"personal-growth":    "self-help",
	"biographies":        "biography",
	"memoir":             "biography",
	"biography-memoir":   "biography",
	"historical":         "historical-fiction",
	"nonfiction":         "non-fiction",
	"scary":              "horror",
	"romcom":             "romance",
	"classics":           "classic",
}

// Canonical returns the canonical slug for a raw genre name.
// Unknown genres return their own slug.
func Canonical(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	return slug
}

// Same reports whether two raw genre names refer to the same genre.
func Same(a, b string) bool {
	return Canonical(a) == Canonical(b)
}
