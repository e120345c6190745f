// Package curl converts curl command lines into Request manifests.
package curl

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/manifest"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

// Converter converts curl commands to Request manifests.
type Converter struct {
	api string
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithAPI sets the api label of the generated manifests.
func WithAPI(api string) Option {
	return func(c *Converter) {
		c.api = api
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{api: "default"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Command is a parsed curl command.
type Command struct {
	Method  string
	URL     string
	Queries *ordered.Map
	Headers *ordered.Map
	Body    string
	// Annotations carry the options that have an apix equivalent.
	Annotations map[string]string
	// Ignored lists the flags without an apix equivalent.
	Ignored []string
	Name    string
}

// Convert parses one curl command and builds its manifest.
func (c *Converter) Convert(curlCmd string) (*manifest.Manifest, *Command, error) {
	cmd, err := Parse(curlCmd)
	if err != nil {
		return nil, nil, err
	}
	return c.Manifest(cmd), cmd, nil
}

// ConvertAll converts every command read from r. Lines ending with a
// backslash continue on the next line; blank lines and # comments are
// skipped.
func (c *Converter) ConvertAll(r io.Reader) ([]*manifest.Manifest, error) {
	commands, err := SplitCommands(r)
	if err != nil {
		return nil, err
	}
	out := make([]*manifest.Manifest, 0, len(commands))
	for i, line := range commands {
		m, _, err := c.Convert(line)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// SplitCommands reads curl commands from r, one per logical line.
func SplitCommands(r io.Reader) ([]string, error) {
	var commands []string
	var current strings.Builder
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if current.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteString(" ")
			continue
		}
		current.WriteString(line)
		commands = append(commands, current.String())
		current.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current.Len() > 0 {
		commands = append(commands, current.String())
	}
	return commands, nil
}

// Parse parses a curl command line.
func Parse(curlCmd string) (*Command, error) {
	cmd := &Command{
		Headers:     ordered.New(),
		Queries:     ordered.New(),
		Annotations: make(map[string]string),
	}

	tokens := tokenize(strings.TrimSpace(curlCmd))
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}

	var rawURL string
	explicitMethod := false
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		value := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", errdef.Newf(errdef.KindParameter, token, "missing value")
			}
			i++
			return tokens[i], nil
		}

		switch token {
		case "-X", "--request":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Method = strings.ToUpper(v)
			explicitMethod = true

		case "-H", "--header":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if name, val, ok := strings.Cut(v, ":"); ok {
				cmd.Headers.Set(strings.TrimSpace(name), strings.TrimSpace(val))
			}

		case "-d", "--data", "--data-raw", "--data-binary", "--json":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if cmd.Body != "" {
				cmd.Body += "&"
			}
			cmd.Body += v
			if token == "--json" {
				cmd.Headers.Set("Content-Type", "application/json")
			}

		case "-u", "--user":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(v)))

		case "-A", "--user-agent":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Headers.Set("User-Agent", v)

		case "-e", "--referer":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Headers.Set("Referer", v)

		case "-b", "--cookie":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Headers.Set("Cookie", v)

		case "-x", "--proxy":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Annotations[manifest.AnnotationProxyURL] = v

		case "-U", "--proxy-user":
			v, err := value()
			if err != nil {
				return nil, err
			}
			login, password, _ := strings.Cut(v, ":")
			cmd.Annotations[manifest.AnnotationProxyLogin] = login
			if password != "" {
				cmd.Annotations[manifest.AnnotationProxyPassword] = password
			}

		case "-o", "--output":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.Annotations[manifest.AnnotationOutputFile] = v

		case "--url":
			v, err := value()
			if err != nil {
				return nil, err
			}
			rawURL = v

		case "-I", "--head":
			cmd.Method = "HEAD"
			explicitMethod = true

		case "-k", "--insecure", "-L", "--location", "-s", "--silent", "-S", "--show-error",
			"-v", "--verbose", "-i", "--include", "--compressed", "-f", "--fail":
			cmd.Ignored = append(cmd.Ignored, token)

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				cmd.Ignored = append(cmd.Ignored, token)
				// skip the value of an unknown option
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i++
				}
			case rawURL == "" && isURL(token):
				rawURL = token
			}
		}
	}

	if rawURL == "" {
		return nil, errdef.Newf(errdef.KindParameter, "curl", "no URL found in curl command")
	}
	if cmd.Method == "" {
		cmd.Method = "GET"
	}
	if cmd.Body != "" && !explicitMethod {
		cmd.Method = "POST"
	}

	base, query, _ := strings.Cut(rawURL, "?")
	cmd.URL = base
	if err := splitQuery(query, cmd.Queries); err != nil {
		return nil, errdef.New(errdef.KindParameter, rawURL, err)
	}
	cmd.Name = generateName(base, cmd.Method)
	return cmd, nil
}

// Manifest builds a Request manifest for cmd. JSON bodies become inline
// bodies, other data is kept as a string.
func (c *Converter) Manifest(cmd *Command) *manifest.Manifest {
	req := &manifest.Request{
		Request: manifest.RequestTemplate{
			Method:  cmd.Method,
			URL:     cmd.URL,
			Headers: cmd.Headers,
			Queries: cmd.Queries,
		},
	}
	if cmd.Body != "" {
		var v any
		if err := json.Unmarshal([]byte(cmd.Body), &v); err == nil {
			req.Request.Body = manifest.Normalize(v)
		} else {
			req.Request.Body = cmd.Body
		}
	}

	m := manifest.NewRequest(c.api, cmd.Name, req)
	for k, v := range cmd.Annotations {
		m.Metadata.Annotations[k] = v
	}
	return m
}

// splitQuery adds the pairs of a raw query string to m in order.
func splitQuery(raw string, m *ordered.Map) error {
	if raw == "" {
		return nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return err
		}
		m.Set(key, value)
	}
	return nil
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false
	started := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 || started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 || started {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}

var (
	hostPath    = regexp.MustCompile(`^[a-zA-Z]+://[^/]+(/[^#]*)?`)
	nonWordRune = regexp.MustCompile(`[^a-z0-9]+`)
)

// generateName derives a manifest name such as get-users-42 from the
// method and URL path.
func generateName(rawURL, method string) string {
	path := "/"
	if matches := hostPath.FindStringSubmatch(rawURL); len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}
	path = strings.Trim(nonWordRune.ReplaceAllString(strings.ToLower(path), "-"), "-")
	if path == "" {
		path = "root"
	}
	return strings.ToLower(method) + "-" + path
}
