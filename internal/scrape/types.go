package scrape

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies the terminal state of a single URL.
type Kind string

// Terminal outcome kinds. Every processed URL ends in exactly one of them.
const (
	KindSuccess         Kind = "success"
	KindHTTPFailure     Kind = "http_failure"
	KindNetworkError    Kind = "network_error"
	KindUnexpectedError Kind = "unexpected_error"
)

// Sentinel texts written to the Information column.
const (
	TextNotFound   = "Information not found"
	TextPageFailed = "Failed to retrieve page"

	networkErrorPrefix    = "Error: "
	unexpectedErrorPrefix = "Unexpected Error: "
)

var (
	// ErrNoURLs is returned when a run is started without any URL.
	ErrNoURLs = errors.New("no URLs found")
	// ErrQueueClosed is returned by Queue.Dequeue once the queue is closed and drained.
	ErrQueueClosed = errors.New("queue closed")
)

// Outcome is the recorded result for one URL. Text is what ends up in the
// output table; the remaining fields only feed logs and metrics.
type Outcome struct {
	// Index is the URL's position in the input list.
	Index      int
	URL        string
	Text       string
	Kind       Kind
	Found      bool
	StatusCode int
	Bytes      int64
	Duration   time.Duration
}

// Reason returns the failure text shown on progress lines, or "" for successes.
func (o Outcome) Reason() string {
	if o.Kind == KindSuccess {
		return ""
	}
	return o.Text
}

// Label returns a metrics-friendly label that separates empty matches from
// successful extractions.
func (o Outcome) Label() string {
	if o.Kind == KindSuccess && !o.Found {
		return "not_found"
	}
	return string(o.Kind)
}

// Succeeded records extracted text.
func Succeeded(url, text string) Outcome {
	return Outcome{URL: url, Text: text, Kind: KindSuccess, Found: true, StatusCode: http.StatusOK}
}

// NotFound records a page whose query matched nothing usable.
func NotFound(url string) Outcome {
	return Outcome{URL: url, Text: TextNotFound, Kind: KindSuccess, StatusCode: http.StatusOK}
}

// HTTPFailed records a reachable page that did not answer 200.
func HTTPFailed(url string, statusCode int) Outcome {
	return Outcome{URL: url, Text: TextPageFailed, Kind: KindHTTPFailure, StatusCode: statusCode}
}

// NetworkErrored records a transport-level failure.
func NetworkErrored(url string, err error) Outcome {
	return Outcome{URL: url, Text: networkErrorPrefix + describe(err), Kind: KindNetworkError}
}

// UnexpectedErrored records a parse or query failure on a retrieved page.
func UnexpectedErrored(url string, err error) Outcome {
	return Outcome{
		URL:        url,
		Text:       unexpectedErrorPrefix + describe(err),
		Kind:       KindUnexpectedError,
		StatusCode: http.StatusOK,
	}
}

// Recovered records a unit that panicked before producing an outcome.
func Recovered(url string, err error) Outcome {
	return Outcome{URL: url, Text: networkErrorPrefix + describe(err), Kind: KindUnexpectedError}
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// TransportError reports a failure below the HTTP layer (dial, DNS, TLS,
// timeout, cancellation). Its message is the underlying error's message.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request to %s failed", e.URL)
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// QueueItem wraps a URL waiting for a worker. Index is the URL's position in
// the input and is copied onto the resulting Outcome.
type QueueItem struct {
	Index int
	URL   string
}
