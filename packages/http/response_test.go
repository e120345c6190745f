package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyContentType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"application/json", LangJSON},
		{"application/json; charset=utf-8", LangJSON},
		{"application/problem+json", LangJSON},
		{"APPLICATION/JSON", LangJSON},
		{"application/xml", LangXML},
		{"application/xhtml+xml", LangXML},
		{"text/html; charset=utf-8", LangHTML},
		{"text/css", LangCSS},
		{"application/javascript", LangJS},
		{"text/plain", LangText},
		{"image/png", LangText},
		{"", LangBinary},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyContentType(tt.contentType), "Content-Type: %s", tt.contentType)
	}
}

func TestFilenameFromURLPath(t *testing.T) {
	assert.Equal(t, "logo.png", FilenameFromURLPath("/static/img/logo.png"))
	assert.Equal(t, "export", FilenameFromURLPath("/api/export/"))
	assert.Equal(t, FallbackFilename, FilenameFromURLPath("/"))
	assert.Equal(t, FallbackFilename, FilenameFromURLPath(""))
}

func TestResult_StatusClasses(t *testing.T) {
	tests := []struct {
		statusCode int
		success    bool
		redirect   bool
		client     bool
		server     bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{299, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{500, false, false, false, true},
		{503, false, false, false, true},
	}

	for _, tt := range tests {
		r := &Result{StatusCode: tt.statusCode}
		assert.Equal(t, tt.success, r.IsSuccess(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.redirect, r.IsRedirect(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.client, r.IsClientError(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.server, r.IsServerError(), "StatusCode: %d", tt.statusCode)
	}
}
