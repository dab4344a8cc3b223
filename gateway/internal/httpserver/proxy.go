package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	echo "github.com/labstack/echo/v4"
)

var backendTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 60 * time.Second,
	}).DialContext,
	MaxIdleConns:          200,
	MaxIdleConnsPerHost:   50,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: time.Second,
}

// backend forwards a group of gateway routes to one service, dropping the
// public prefix the service does not know about.
type backend struct {
	name   string
	target *url.URL
	strip  string
	proxy  *httputil.ReverseProxy
}

func newBackend(name, rawURL, strip string) (*backend, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", name, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%s url %q is not absolute", name, rawURL)
	}

	b := &backend{name: name, target: target, strip: strip}
	b.proxy = &httputil.ReverseProxy{
		Rewrite:       b.rewrite,
		Transport:     backendTransport,
		FlushInterval: 100 * time.Millisecond,
		ErrorHandler:  b.unavailable,
	}
	return b, nil
}

func (b *backend) rewrite(pr *httputil.ProxyRequest) {
	if b.strip != "" {
		pr.Out.URL.Path = strings.TrimPrefix(pr.Out.URL.Path, b.strip)
		pr.Out.URL.RawPath = strings.TrimPrefix(pr.Out.URL.RawPath, b.strip)
	}
	pr.SetURL(b.target)
	pr.SetXForwarded()
}

func (b *backend) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("proxy_error",
		"status", http.StatusBadGateway,
		"backend", b.name,
		"upstream", b.target.Host,
		"error", err,
	)
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"message":"upstream unavailable"}`))
}

// Handle proxies the request. The id generated by the RequestID middleware
// only lives on the response, so it is copied onto the outgoing request to
// correlate gateway and service logs.
func (b *backend) Handle(c echo.Context) error {
	req := c.Request()
	if req.Header.Get(echo.HeaderXRequestID) == "" {
		if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
			req.Header.Set(echo.HeaderXRequestID, rid)
		}
	}
	b.proxy.ServeHTTP(c.Response(), req)
	return nil
}
