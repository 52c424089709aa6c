package remote

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeConfigurationMissing = "CONFIGURATION_MISSING"
	TextCodeNetworkFailure       = "NETWORK_FAILURE"
	TextCodeDecodeFailure        = "RESPONSE_DECODE_FAILED"
)

// ConfigurationError reports a missing instance host or auth token. It is
// returned before any request is attempted.
func ConfigurationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeConfigurationMissing)
}

// IsConfigurationError reports whether err was produced by ConfigurationError.
func IsConfigurationError(err error) bool {
	return textCode(err) == TextCodeConfigurationMissing
}

// StatusCode extracts the HTTP status carried by a request error. Zero means
// the request never produced a response.
func StatusCode(err error) int {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Code
	}
	return 0
}

// IsAuthError reports whether the instance rejected the credentials.
func IsAuthError(err error) bool {
	switch StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// IsNotFound reports a 404 from the instance.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func textCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

func statusError(method, path string, status int, body []byte) *goerrors.Error {
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(status)
	}
	return goerrors.New(fmt.Sprintf("%s %s: %s", method, path, detail), goerrors.HTTPStatusToCategory(status)).
		WithCode(status).
		WithTextCode(goerrors.HTTPStatusToTextCode(status)).
		WithMetadata(map[string]any{
			"method": method,
			"path":   path,
		})
}

func networkError(method, path string, err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("%s %s: network error", method, path)).
		WithTextCode(TextCodeNetworkFailure)
}
