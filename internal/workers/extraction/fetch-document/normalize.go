// internal/workers/extraction/fetch-document/normalize.go
package fetchdocument

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "formqa/internal/common/errors"
)

var viewRewrite = regexp.MustCompile(`/(formResponse|viewanalytics|edit)(/.*)?$`)

// NormalizeURL points a form link at its view page and drops the query string and fragment.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.NewInvalidTargetURLError(raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", apperrors.NewInvalidTargetURLError(raw, "scheme must be http or https")
	}
	if u.Host == "" {
		return "", apperrors.NewInvalidTargetURLError(raw, "missing host")
	}

	u.Path = viewRewrite.ReplaceAllString(u.Path, "/viewform")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Expand builds the relay request URL for target.
func (r Relay) Expand(target string) string {
	out := strings.ReplaceAll(r.URLTemplate, "{url}", url.QueryEscape(target))
	return strings.ReplaceAll(out, "{raw}", target)
}
