package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/core/runner"
	"github.com/abdul-hamid-achik/apix/packages/http"
	"github.com/abdul-hamid-achik/apix/packages/ordered"
)

var requestMethods = []string{"get", "post", "put", "patch", "delete", "head"}

type requestOptions struct {
	headers      []string
	queries      []string
	cookies      []string
	body         string
	file         string
	noFollow     bool
	maxRedirects int
	userAgent    string
	certificates []string
	client       clientFlags
}

func newRequestCmd(a *app, method string) *cobra.Command {
	o := &requestOptions{}
	upper := strings.ToUpper(method)
	cmd := &cobra.Command{
		Use:   method + " <url>",
		Short: fmt.Sprintf("Send a %s request", upper),
		Example: heredoc.Docf(`
			apix %[1]s https://httpbin.org/anything -H accept:application/json
			apix %[1]s https://httpbin.org/anything -q page:2 -c session:abc
			apix %[1]s https://httpbin.org/anything -b '{"name":"apix"}'
			apix %[1]s https://httpbin.org/anything -f payload.bin -x http://proxy:3128`, method),
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			if o.body != "" && o.file != "" {
				return usageError(errors.New("--body and --file cannot be used together"))
			}
			return usageError(http.ValidateURL(args[0]))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), a, o, upper, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&o.headers, "header", "H", nil, "Request header as name:value (repeatable)")
	flags.StringArrayVarP(&o.queries, "query", "q", nil, "Query parameter as name:value (repeatable)")
	flags.StringArrayVarP(&o.cookies, "cookie", "c", nil, "Cookie as name:value (repeatable)")
	flags.StringVarP(&o.body, "body", "b", "", "Request body sent as is")
	flags.StringVarP(&o.file, "file", "f", "", "File streamed as the request body")
	flags.BoolVar(&o.noFollow, "no-follow", false, "Do not follow redirects")
	flags.IntVar(&o.maxRedirects, "max-redirects", http.DefaultMaxRedirects, "Maximum number of redirects to follow")
	flags.StringVar(&o.userAgent, "user-agent", "", "User-Agent header (default: apix/<version>)")
	flags.StringArrayVar(&o.certificates, "certificate", nil, "Trust the PEM certificates in this file (repeatable)")
	o.client.bind(cmd)
	return cmd
}

func runRequest(ctx context.Context, a *app, o *requestOptions, method, url string) error {
	headers, err := pairs("header", o.headers)
	if err != nil {
		return err
	}
	queries, err := pairs("query", o.queries)
	if err != nil {
		return err
	}
	cookies, err := pairs("cookie", o.cookies)
	if err != nil {
		return err
	}

	req := http.NewRequest(method, url)
	req.Headers = headers
	req.Queries = queries
	req.Cookies = cookies
	switch {
	case o.file != "":
		req.Body = http.FileBody{Path: o.file}
	case o.body != "":
		req.Body = http.StringBody(o.body)
	}

	req.Options = a.requestOptions()
	if err := o.client.apply(&req.Options); err != nil {
		return err
	}
	req.Options.NoFollow = o.noFollow
	req.Options.MaxRedirects = o.maxRedirects
	req.Options.UserAgent = o.userAgent
	req.Options.CACertificates = o.certificates

	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}
	result, err := a.newRunner(store).Send(ctx, runner.AdhocName, req)
	a.report(result)
	return err
}

// pairs parses name:value flags keeping their order.
func pairs(flag string, values []string) (*ordered.Map, error) {
	m, err := http.ParseNameValues(values)
	if err != nil {
		return nil, usageError(fmt.Errorf("invalid --%s: %w", flag, err))
	}
	return m, nil
}
