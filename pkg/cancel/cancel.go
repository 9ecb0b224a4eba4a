// Package cancel implements the single piece of process-wide mutable state
// in the whole system: a cooperative cancellation flag the executor checks
// once per commit boundary (spec "Cancellation check"). Safe to read and
// write from any goroutine, including a signal handler.
package cancel

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

var flag atomic.Bool

// IsCancelled reports whether cancellation has been requested.
func IsCancelled() bool {
	return flag.Load()
}

// Request sets the cancellation flag. Idempotent.
func Request() {
	flag.Store(true)
}

// Reset clears the cancellation flag. Used between independent CLI
// invocations within the same process (mainly tests).
func Reset() {
	flag.Store(false)
}

// Handler stops an installed signal forwarder.
type Handler struct {
	sigChan chan os.Signal
}

// RegisterHandler installs a SIGINT/SIGTERM listener that calls Request on
// the first signal. A second signal of either kind exits the process
// immediately with the conventional 128+signal status, mirroring how a
// double Ctrl+C forces an unresponsive operation to stop.
func RegisterHandler() *Handler {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	h := &Handler{sigChan: sigChan}
	go h.run()
	return h
}

func (h *Handler) run() {
	count := 0
	for sig := range h.sigChan {
		count++
		Request()
		if count > 1 {
			code := 130
			if sig == syscall.SIGTERM {
				code = 143
			}
			os.Exit(code)
		}
	}
}

// Stop removes the signal handler. Safe to call once.
func (h *Handler) Stop() {
	signal.Stop(h.sigChan)
	close(h.sigChan)
}
