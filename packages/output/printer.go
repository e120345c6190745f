package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// Printer pretty-prints bodies and HTTP heads with chroma.
type Printer struct {
	out   io.Writer
	theme string
	color bool
}

type PrinterOption func(*Printer)

func NewPrinter(theme string, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:   os.Stdout,
		theme: theme,
		color: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithOutput(w io.Writer) PrinterOption {
	return func(p *Printer) {
		p.out = w
	}
}

// WithColor enables or disables syntax highlighting.
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.color = enabled
	}
}

// PrettyPrint writes content highlighted as language. JSON is re-indented
// first; invalid JSON is printed as is.
func (p *Printer) PrettyPrint(content []byte, language string) error {
	if language == "json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, content, "", "  "); err == nil {
			content = buf.Bytes()
		}
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}
	if !p.color {
		_, err := p.out.Write(content)
		return err
	}
	if err := quick.Highlight(p.out, string(content), language, "terminal256", p.theme); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}

// PrintRequest prints the request line, host and headers, followed by body
// when language is not empty.
func (p *Printer) PrintRequest(req *http.Request, body []byte, language string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", req.Method, req.URL.RequestURI(), req.Proto)
	fmt.Fprintf(&b, "host: %s\n", req.URL.Host)
	writeHeaders(&b, req.Header)
	if err := p.PrettyPrint([]byte(b.String()), "yaml"); err != nil {
		return err
	}
	if len(body) > 0 && language != "" {
		fmt.Fprintln(p.out)
		return p.PrettyPrint(body, language)
	}
	return nil
}

// PrintResponse prints the status line and headers.
func (p *Printer) PrintResponse(resp *http.Response) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", resp.Proto, resp.Status)
	writeHeaders(&b, resp.Header)
	return p.PrettyPrint([]byte(b.String()), "yaml")
}

func writeHeaders(b *strings.Builder, h http.Header) {
	for _, k := range sortedKeys(h) {
		for _, v := range h[k] {
			fmt.Fprintf(b, "%s: %s\n", strings.ToLower(k), v)
		}
	}
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
