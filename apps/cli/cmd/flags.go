package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/http"
)

// clientFlags are the transport flags shared by exec and the ad-hoc
// request commands.
type clientFlags struct {
	proxy         string
	proxyLogin    string
	proxyPassword string
	timeout       time.Duration
	insecure      bool
}

func (f *clientFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.proxy, "proxy", "x", getEnvString("APIX_PROXY", ""), "Proxy URL for all traffic (env: APIX_PROXY)")
	flags.StringVar(&f.proxyLogin, "proxy-login", "", "Proxy basic auth login")
	flags.StringVar(&f.proxyPassword, "proxy-password", "", "Proxy basic auth password")
	flags.DurationVar(&f.timeout, "timeout", 0, "Request timeout, e.g. 10s (default: config timeout)")
	flags.BoolVarP(&f.insecure, "insecure", "k", false, "Disable SSL certificate validation")
}

// apply copies the flags that were set onto opts.
func (f *clientFlags) apply(opts *http.Options) error {
	if f.proxy != "" {
		if err := http.ValidateURL(f.proxy); err != nil {
			return usageError(fmt.Errorf("invalid --proxy: %w", err))
		}
		opts.ProxyURL = f.proxy
	}
	opts.ProxyLogin = f.proxyLogin
	opts.ProxyPassword = f.proxyPassword
	if f.timeout > 0 {
		opts.Timeout = f.timeout
	}
	opts.Insecure = f.insecure
	return nil
}

// parsePairs validates name:value flags.
func parsePairs(flag string, values []string) (map[string]string, error) {
	m, err := pairs(flag, values)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, m.Len())
	_ = m.Each(func(k, v string) error {
		out[k] = v
		return nil
	})
	return out, nil
}
