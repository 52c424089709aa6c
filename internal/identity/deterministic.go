package identity

import (
	"net/url"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by record type so ids never collide across tables.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(trimmed))
	}
	return uid
}

// FriendLinkUUID returns the id of the friend link pointing at rawURL.
// Scheme and host case and a trailing slash do not change the id.
func FriendLinkUUID(rawURL string) uuid.UUID {
	return UUID("privateplot:friend_link:" + CanonicalURL(rawURL))
}

// CanonicalURL lowercases the scheme and host of rawURL and drops a trailing
// slash from the path. Values that do not parse are only trimmed.
func CanonicalURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return trimmed
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}
