package progress

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart  Stage = "RUN_START"
	StageRunDone   Stage = "RUN_DONE"
	StageFetchDone Stage = "FETCH_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for fetch completions. StatusNone is
// used when no HTTP response was received at all.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
	StatusNone  StatusClass = "none"
)

// Event captures a single milestone of a scrape run.
type Event struct {
	// RunID identifies the run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Site scopes fetch events to a host label.
	Site string
	// URL is the page URL for fetch events.
	URL string
	// Outcome is the outcome label of a fetch (success, not_found, ...).
	Outcome string
	// Bytes carries the response size for the fetch.
	Bytes int64
	// Visits is the number of URLs in the run (RUN_START) or processed (RUN_DONE).
	Visits int64
	// StatusClass groups HTTP response codes.
	StatusClass StatusClass
	// Dur captures fetch latency or total run time.
	Dur time.Duration
	// Note carries low-volume context such as error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageFetchDone:
		if e.Site == "" {
			return errors.New("fetch done requires site")
		}
		if e.StatusClass == "" {
			return errors.New("fetch done requires status class")
		}
		if e.Outcome == "" {
			return errors.New("fetch done requires outcome")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ClassifyStatus groups HTTP status codes for fetch events. A zero code means
// no response was received.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code == 0:
		return StatusNone
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}

// SiteLabel reduces a URL to a lowercase hostname for metric labels. It
// returns "unknown" if the URL has no usable host.
func SiteLabel(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
