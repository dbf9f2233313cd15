package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// ReferenceKind tags the MediaReference union.
type ReferenceKind int

const (
	ReferenceURL ReferenceKind = iota + 1
	ReferenceBytes
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceURL:
		return "url"
	case ReferenceBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// MediaReference is a normalized remote result: either a URL to fetch or
// bytes that were delivered inline.
type MediaReference struct {
	Kind ReferenceKind
	URL  string
	Data []byte
	MIME string
}

func URLReference(u string) MediaReference {
	return MediaReference{Kind: ReferenceURL, URL: u}
}

func BytesReference(data []byte, mime string) MediaReference {
	return MediaReference{Kind: ReferenceBytes, Data: data, MIME: mime}
}

// NormalizeOutput converts a decoded remote output into a MediaReference.
// Lists are reduced to their first element. Strings must be http(s) URLs or
// base64 data URIs; objects must carry a "url" string. Anything else yields
// an *UnexpectedOutputError.
func NormalizeOutput(raw any) (MediaReference, error) {
	value := raw
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return MediaReference{}, &UnexpectedOutputError{Raw: raw}
		}
		value = list[0]
	}
	switch v := value.(type) {
	case string:
		return referenceFromString(v, raw)
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return referenceFromString(u, raw)
		}
	case []byte:
		if len(v) > 0 {
			return BytesReference(v, ""), nil
		}
	}
	return MediaReference{}, &UnexpectedOutputError{Raw: raw}
}

func referenceFromString(s string, raw any) (MediaReference, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		data, mime, err := decodeDataURI(s)
		if err != nil {
			return MediaReference{}, &UnexpectedOutputError{Raw: raw}
		}
		return BytesReference(data, mime), nil
	}
	parsed, err := url.Parse(s)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return MediaReference{}, &UnexpectedOutputError{Raw: raw}
	}
	return URLReference(parsed.String()), nil
}

func decodeDataURI(s string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("data uri: missing payload")
	}
	mime, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", err
		}
		return []byte(unescaped), mime, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data uri: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("data uri: empty payload")
	}
	return data, mime, nil
}

// EncodeDataURI renders data as a base64 data URI, the form the remote API
// accepts for uploaded files.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
