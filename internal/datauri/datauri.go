// Package datauri decodes base64 data URIs carrying uploaded image payloads
// and maps media types to storage file extensions.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrFormat reports a string that is not a well-formed base64 image data URI.
var ErrFormat = errors.New("datauri: invalid image data URI")

var uriPattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// acceptedMediaTypes is the closed set of upload formats the service takes.
var acceptedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Decode parses a `data:<media-type>;base64,<payload>` string and returns the
// declared media type with the raw payload bytes. Anything that does not
// match the pattern, declares a media type outside the accepted image set, or
// carries a payload that is not valid base64 fails with an error wrapping
// ErrFormat.
func Decode(uri string) (string, []byte, error) {
	match := uriPattern.FindStringSubmatch(strings.TrimSpace(uri))
	if match == nil {
		return "", nil, ErrFormat
	}
	mediaType := strings.ToLower(match[1])
	if _, ok := acceptedMediaTypes[mediaType]; !ok {
		return "", nil, fmt.Errorf("%w: unsupported media type %q", ErrFormat, mediaType)
	}
	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad base64 payload", ErrFormat)
	}
	return mediaType, data, nil
}

// Extension derives a storage file extension from a media type's subtype,
// e.g. image/png becomes "png". Unparseable media types fall back to "jpg".
func Extension(mediaType string) string {
	_, subtype, ok := strings.Cut(strings.ToLower(strings.TrimSpace(mediaType)), "/")
	if !ok || subtype == "" {
		return "jpg"
	}
	if subtype == "jpeg" {
		return "jpg"
	}
	for _, r := range subtype {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "jpg"
		}
	}
	return subtype
}
