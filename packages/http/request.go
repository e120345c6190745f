package http

import (
	"fmt"
	neturl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

// Body is the payload of a request: JSONBody, StringBody or FileBody.
// A nil Body sends no payload.
type Body interface {
	isBody()
}

// JSONBody is serialized as JSON.
type JSONBody struct {
	Value any
}

// StringBody is sent verbatim.
type StringBody string

// FileBody streams the file at Path.
type FileBody struct {
	Path string
}

func (JSONBody) isBody()   {}
func (StringBody) isBody() {}
func (FileBody) isBody()   {}

// Options control how a request is sent and where its response goes.
type Options struct {
	Verbose          bool
	Theme            string
	IsOutputTerminal bool
	NoColor          bool
	OutputFilename   string
	ProxyURL         string
	ProxyLogin       string
	ProxyPassword    string

	Timeout        time.Duration
	Insecure       bool
	NoFollow       bool
	MaxRedirects   int
	UserAgent      string
	CACertificates []string
}

// Request is a fully rendered request ready to be sent.
type Request struct {
	Method  string
	URL     string
	Headers *ordered.Map
	Queries *ordered.Map
	Cookies *ordered.Map
	Body    Body
	Options Options
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: ordered.New(),
		Queries: ordered.New(),
		Cookies: ordered.New(),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = ordered.New()
	}
	r.Headers.Set(key, value)
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	if r.Queries == nil {
		r.Queries = ordered.New()
	}
	r.Queries.Set(key, value)
	return r
}

func (r *Request) SetBody(body Body) *Request {
	r.Body = body
	return r
}

// BuildURL appends the query parameters to the URL in their declared
// order, after any query already present.
func (r *Request) BuildURL() (string, error) {
	u, err := neturl.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if r.Queries.Len() == 0 {
		return u.String(), nil
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	_ = r.Queries.Each(func(k, v string) error {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(neturl.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(neturl.QueryEscape(v))
		return nil
	})
	u.RawQuery = b.String()
	return u.String(), nil
}

var nameValuePattern = regexp.MustCompile(`^([\w-]+):(.*)$`)

// ParseNameValue splits a "name:value" argument. The name may contain
// letters, digits, '_' and '-'.
func ParseNameValue(s string) (string, string, error) {
	m := nameValuePattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("invalid value %q, expected name:value", s)
	}
	return m[1], m[2], nil
}

// ParseNameValues parses every argument into an ordered map.
func ParseNameValues(args []string) (*ordered.Map, error) {
	out := ordered.New()
	for _, a := range args {
		k, v, err := ParseNameValue(a)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}
