package collyfetcher

import (
	"net"
	"net/http"
	"time"

	"github.com/motemen/go-loghttp"
	"go.uber.org/zap"
)

func buildTransport(cfg Config) http.RoundTripper {
	base := newHTTPTransport()
	if !cfg.LogTraffic {
		return base
	}
	return newLoggingTransport(base, cfg.Logger)
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
}

// newLoggingTransport logs every request and response at debug level.
func newLoggingTransport(base http.RoundTripper, logger *zap.Logger) *loghttp.Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loghttp.Transport{
		Transport: base,
		LogRequest: func(req *http.Request) {
			logger.Debug("http request",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
			)
		},
		LogResponse: func(resp *http.Response) {
			logger.Debug("http response",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL.String()),
				zap.Int("status_code", resp.StatusCode),
				zap.Int64("content_length", resp.ContentLength),
			)
		},
	}
}
