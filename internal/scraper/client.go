package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxRedirects bounds redirect chains such as consent or locale redirects.
const maxRedirects = 10

// Client builds HTTP clients for the booking site.
type Client struct {
	// proxyAddress is an optional SOCKS5 proxy in "host:port" form.
	proxyAddress string

	// dialer routes connections through the proxy when one is configured.
	dialer proxy.Dialer

	// timeout bounds each request including reading the body.
	timeout time.Duration

	// cookie is a raw Cookie header value added to every request.
	cookie string

	// headers are added to every request.
	headers map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCookie sets a raw cookie string, e.g. "consent=1; locale=en-gb".
func WithCookie(cookie string) ClientOption {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets headers added to every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// NewClient creates a client. An empty proxyAddress connects directly.
//
// The proxy is not contacted here, so a client can be created before the
// proxy is running.
func NewClient(proxyAddress string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		proxyAddress: proxyAddress,
		dialer:       proxy.Direct,
		timeout:      40 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if proxyAddress != "" {
		if !isValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		c.dialer = dialer
	}
	return c, nil
}

// ProxyAddress returns the configured proxy address, or "".
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// HTTPClient returns an HTTP client with a cookie jar that injects the
// configured cookie and headers into every request, redirects included.
func (c *Client) HTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}
	if c.proxyAddress != "" {
		transport.DialContext = c.dialContext
	} else {
		transport.DialContext = (&net.Dialer{Timeout: c.timeout}).DialContext
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:    transport,
			cookie:  c.cookie,
			headers: c.headers,
		},
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// dialContext dials through the proxy. The SOCKS5 dialer from x/net
// implements proxy.ContextDialer, which is used when available.
func (c *Client) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	ch := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.Dial(network, addr)
		ch <- dialResult{conn, err}
	}()

	select {
	case r := <-ch:
		return r.conn, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// isValidProxyAddress checks for a non-empty host and a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// headerInjectingTransport adds the configured cookie and headers to every
// outgoing request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cookie == "" && len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
