package http

import (
	"net/http"
	"path"
	"strings"
	"time"
)

// Languages a response body can be displayed as.
const (
	LangJSON   = "json"
	LangXML    = "xml"
	LangHTML   = "html"
	LangCSS    = "css"
	LangJS     = "js"
	LangText   = "txt"
	LangBinary = "binary"
)

// FallbackFilename names downloads whose URL has no usable last segment.
const FallbackFilename = "unknown.bin"

// ClassifyContentType maps a Content-Type value to a display language.
// Matching is a case-insensitive substring test in a fixed order. An empty
// value means the body is binary.
func ClassifyContentType(contentType string) string {
	if contentType == "" {
		return LangBinary
	}
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return LangJSON
	case strings.Contains(ct, "xml"):
		return LangXML
	case strings.Contains(ct, "html"):
		return LangHTML
	case strings.Contains(ct, "css"):
		return LangCSS
	case strings.Contains(ct, "javascript"):
		return LangJS
	default:
		return LangText
	}
}

// FilenameFromURLPath returns the last segment of a URL path, or
// FallbackFilename when there is none.
func FilenameFromURLPath(urlPath string) string {
	base := path.Base(urlPath)
	if base == "" || base == "/" || base == "." {
		return FallbackFilename
	}
	return base
}

// Result summarizes a completed exchange.
type Result struct {
	StatusCode int
	Status     string
	Proto      string
	Headers    http.Header
	Language   string
	Bytes      int64
	Duration   time.Duration
	OutputPath string
}

func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Result) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Result) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Result) IsServerError() bool {
	return r.StatusCode >= 500
}
