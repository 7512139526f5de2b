// internal/workers/delivery/submit-form/encode.go
package submitform

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/url"
	"regexp"
	"strings"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/models"
)

var (
	pageSegments = map[string]bool{
		"viewform":      true,
		"viewanalytics": true,
		"edit":          true,
		"formResponse":  true,
	}

	// /forms/d/e/<id> or /forms/d/<id>, optionally under /u/<n>
	formIDPath = regexp.MustCompile(`^/forms(/u/\d+)?/d(/e)?/[^/]+$`)
)

// SubmitURL returns the submission endpoint for a form link.
func SubmitURL(target string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", apperrors.NewInvalidTargetURLError(target, err.Error())
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.NewInvalidTargetURLError(target, "absolute http(s) URL required")
	}

	path := strings.TrimSuffix(u.Path, "/")
	segments := strings.Split(path, "/")

	rewritten := ""
	for i, seg := range segments {
		if pageSegments[seg] {
			rewritten = strings.Join(segments[:i], "/") + "/formResponse"
			break
		}
	}
	if rewritten == "" {
		if !formIDPath.MatchString(path) {
			return "", apperrors.NewInvalidTargetURLError(target, "path does not identify a form")
		}
		rewritten = path + "/formResponse"
	}

	u.Path = rewritten
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// EncodeForm writes one multipart part per deliverable value, keyed entry.<externalKey>.
// List values produce one part per element.
func EncodeForm(record models.GeneratedRecord, fields []models.FieldDescriptor) (*bytes.Buffer, string, int, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	entries := 0

	for _, f := range fields {
		if !f.Deliverable() {
			continue
		}
		value, ok := record.Values[f.ID]
		if !ok {
			continue
		}
		key := "entry." + f.ExternalKey

		switch v := value.(type) {
		case []string:
			for _, item := range v {
				if err := w.WriteField(key, item); err != nil {
					return nil, "", 0, err
				}
				entries++
			}
		default:
			if err := w.WriteField(key, fmt.Sprint(v)); err != nil {
				return nil, "", 0, err
			}
			entries++
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", 0, err
	}
	return body, w.FormDataContentType(), entries, nil
}
