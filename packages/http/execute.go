package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
	"github.com/abdul-hamid-achik/apix/packages/output"
)

// Printer renders request and response details.
type Printer interface {
	PrintRequest(req *http.Request, body []byte, language string) error
	PrintResponse(resp *http.Response) error
	PrettyPrint(content []byte, language string) error
}

// Progress receives transferred byte counts.
type Progress interface {
	Add(n int64)
	Finish()
}

// ProgressFactory creates a progress sink for a transfer of total bytes
// (0 when unknown).
type ProgressFactory func(label string, total int64) Progress

// Executor sends requests and routes their responses to the terminal or
// to files.
type Executor struct {
	// Version is advertised in the default User-Agent.
	Version string
	// Stdout receives response bodies and verbose output.
	Stdout io.Writer
	// Printer overrides the syntax-highlighting printer.
	Printer Printer
	// NewProgress overrides the stderr progress bars.
	NewProgress ProgressFactory
}

func NewExecutor(version string) *Executor {
	return &Executor{Version: version, Stdout: os.Stdout}
}

// DefaultHeaders returns the headers sent unless the caller overrides them.
func (e *Executor) DefaultHeaders(userAgent string) [][2]string {
	if userAgent == "" {
		v := e.Version
		if v == "" {
			v = "dev"
		}
		userAgent = "apix/" + v
	}
	return [][2]string{
		{"User-Agent", userAgent},
		{"Accept", "application/json"},
		{"Accept-Encoding", "gzip"},
		{"Content-Type", "application/json"},
	}
}

func (e *Executor) printer(opts Options) Printer {
	if e.Printer != nil {
		return e.Printer
	}
	return output.NewPrinter(opts.Theme,
		output.WithOutput(e.stdout()),
		output.WithColor(opts.IsOutputTerminal && !opts.NoColor))
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Executor) progress(label string, total int64) Progress {
	if e.NewProgress != nil {
		return e.NewProgress(label, total)
	}
	return output.NewProgress(label, total)
}

func clientOptions(opts Options) []ClientOption {
	timeout := opts.Timeout
	if timeout < 0 {
		timeout = 0
	}
	co := []ClientOption{
		WithTimeout(timeout),
		WithFollowRedirects(!opts.NoFollow),
		WithMaxRedirects(opts.MaxRedirects),
		WithValidateSSL(!opts.Insecure),
	}
	if opts.ProxyURL != "" {
		co = append(co, WithProxy(opts.ProxyURL, opts.ProxyLogin, opts.ProxyPassword))
	}
	if len(opts.CACertificates) > 0 {
		co = append(co, WithCACertificates(opts.CACertificates...))
	}
	return co
}

// Execute sends req and writes the response body according to its
// content type and req.Options. The returned error carries an errdef kind.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	opts := req.Options

	if err := ValidateURL(req.URL); err != nil {
		return nil, errdef.HTTP(req.URL, err)
	}
	target, err := req.BuildURL()
	if err != nil {
		return nil, errdef.HTTP(req.URL, err)
	}

	client, err := NewClient(clientOptions(opts)...)
	if err != nil {
		return nil, errdef.HTTP(req.URL, err)
	}
	defer client.Close()

	var (
		body        io.Reader
		shownBody   []byte
		contentLen  int64 = -1
		uploadTrack Progress
	)
	switch b := req.Body.(type) {
	case StringBody:
		shownBody = []byte(b)
		body = strings.NewReader(string(b))
		contentLen = int64(len(b))
	case JSONBody:
		data, err := json.Marshal(b.Value)
		if err != nil {
			return nil, errdef.Serialization("request body", err)
		}
		shownBody = data
		body = bytes.NewReader(data)
		contentLen = int64(len(data))
	case FileBody:
		f, err := os.Open(b.Path)
		if err != nil {
			return nil, errdef.IO(b.Path, fmt.Errorf("could not open file: %w", err))
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, errdef.IO(b.Path, err)
		}
		contentLen = info.Size()
		uploadTrack = e.progress("Uploading "+b.Path, contentLen)
		body = &output.CountingReader{R: f, OnRead: uploadTrack.Add}
	case nil:
	default:
		return nil, errdef.Newf(errdef.KindHTTP, req.URL, "unsupported body type %T", req.Body)
	}
	finishUpload := func() {
		if uploadTrack != nil {
			uploadTrack.Finish()
			uploadTrack = nil
		}
	}
	defer finishUpload()

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errdef.HTTP(req.URL, err)
	}
	if contentLen >= 0 {
		httpReq.ContentLength = contentLen
	}

	for _, h := range e.DefaultHeaders(opts.UserAgent) {
		httpReq.Header.Set(h[0], h[1])
	}
	_ = req.Headers.Each(func(k, v string) error {
		httpReq.Header.Set(k, v)
		return nil
	})
	_ = req.Cookies.Each(func(k, v string) error {
		httpReq.AddCookie(&http.Cookie{Name: k, Value: v})
		return nil
	})

	disp := e.printer(opts)
	if opts.Verbose {
		lang := ClassifyContentType(httpReq.Header.Get("Content-Type"))
		if lang == LangBinary {
			lang = ""
		}
		if err := disp.PrintRequest(httpReq, shownBody, lang); err != nil {
			return nil, errdef.IO("stdout", err)
		}
		fmt.Fprintln(e.stdout())
	}

	start := time.Now()
	resp, err := client.Do(ctx, httpReq)
	finishUpload()
	if err != nil {
		return nil, errdef.HTTP(req.URL, err)
	}
	defer resp.Body.Close()

	if opts.Verbose {
		if err := disp.PrintResponse(resp); err != nil {
			return nil, errdef.IO("stdout", err)
		}
		fmt.Fprintln(e.stdout())
	}

	reader := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errdef.HTTP(req.URL, fmt.Errorf("decoding gzip response: %w", err))
		}
		defer gz.Close()
		reader = gz
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Headers:    resp.Header,
		Language:   ClassifyContentType(resp.Header.Get("Content-Type")),
	}

	if result.Language == LangBinary {
		err = e.writeBinary(reader, resp, httpReq, opts, result)
	} else {
		err = e.writeText(reader, opts, disp, result)
	}
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (e *Executor) writeBinary(r io.Reader, resp *http.Response, req *http.Request, opts Options, result *Result) error {
	dest := opts.OutputFilename
	if dest == "" && !opts.IsOutputTerminal {
		dest = FilenameFromURLPath(req.URL.Path)
	}

	if dest == "" {
		n, err := io.Copy(e.stdout(), r)
		result.Bytes = n
		if err != nil {
			return errdef.HTTP(req.URL.String(), err)
		}
		return nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return errdef.IO(dest, err)
	}
	defer f.Close()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	track := e.progress("Downloading "+dest, total)
	n, err := io.Copy(f, &output.CountingReader{R: r, OnRead: track.Add})
	track.Finish()
	result.Bytes = n
	result.OutputPath = dest
	if err != nil {
		return errdef.HTTP(req.URL.String(), err)
	}
	return nil
}

func (e *Executor) writeText(r io.Reader, opts Options, disp Printer, result *Result) error {
	data, err := io.ReadAll(r)
	result.Bytes = int64(len(data))
	if err != nil {
		return errdef.HTTP("", fmt.Errorf("reading response body: %w", err))
	}
	if len(data) == 0 {
		return nil
	}
	if opts.OutputFilename != "" {
		if err := os.WriteFile(opts.OutputFilename, data, 0o644); err != nil {
			return errdef.IO(opts.OutputFilename, err)
		}
		result.OutputPath = opts.OutputFilename
		return nil
	}
	if err := disp.PrettyPrint(data, result.Language); err != nil {
		return errdef.IO("stdout", err)
	}
	return nil
}
