package articles

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const randomSlugLength = 10

var (
	urlFriendlySlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSeparators  = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsURLFriendly reports whether value can be used as an article slug as is.
func IsURLFriendly(value string) bool {
	return urlFriendlySlug.MatchString(value)
}

// SlugFromTitle derives a slug from a title. It returns an empty string when
// the title has nothing usable (emoji or punctuation only).
func SlugFromTitle(title string) string {
	normalized, err := slug.Normalize(title)
	if err != nil {
		normalized = strings.ToLower(title)
	}
	if IsURLFriendly(normalized) {
		return normalized
	}
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(normalized), "-"), "-")
}

// RandomSlug returns a short random slug.
func RandomSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSlugLength]
}

func withSuffix(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}
