// Package logship sends log lines and events to a remote collector.
// Shipping is best effort and fire-and-forget: a failed POST throttles
// further sends for a while but never blocks or fails the caller.
package logship

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"
)

type op struct {
	uri  string
	mime string
	d    []byte
}

const (
	// how long to wait before we resume sending logs to the server
	// after a failure
	throttleTimeout = time.Second * 15

	kPleaseStop = "please-stop"
)

var (
	// Server is the host:port of the collector. Empty means
	// shipping is disabled.
	Server = ""
	ApiKey = ""

	throttleUntil  time.Time
	ch             = make(chan op, 1000)
	startLogWorker sync.Once
)

func logf(s string, args ...interface{}) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	fmt.Print(s)
}

func worker() {
	for op := range ch {
		uri := op.uri
		if uri == kPleaseStop {
			break
		}
		r := requests.
			URL(uri).
			BodyBytes(op.d).
			ContentType(op.mime)
		if ApiKey != "" {
			r = r.Header("X-Api-Key", ApiKey)
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		err := r.Fetch(ctx)
		cancel()
		if err != nil {
			logf("logship: POST %s failed: %v, will throttle for %s\n", uri, err, throttleTimeout)
			throttleUntil = time.Now().Add(throttleTimeout)
		}
	}
}

// Stop disables shipping and stops the background worker
func Stop() {
	Server = ""
	ch <- op{uri: kPleaseStop}
}

func send(path, mime string, d []byte) {
	if Server == "" {
		return
	}
	if time.Now().Before(throttleUntil) {
		return
	}
	startLogWorker.Do(func() {
		go worker()
	})
	uri := "http://" + Server + path
	o := op{uri: uri, mime: mime, d: d}
	select {
	case ch <- o:
	default:
		// channel full, drop the entry rather than block
	}
}

// Log ships one log line
func Log(s string) {
	send("/api/v1/log", "text/plain", []byte(s))
}

// Event ships one serialized event line
func Event(d []byte) {
	send("/api/v1/event", "text/plain", d)
}
