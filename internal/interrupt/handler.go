// Package interrupt turns SIGINT/SIGTERM into context cancellation, with
// a second signal forcing immediate exit.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitCode is the process exit code for an interrupted run (128 + SIGINT).
const ExitCode = 130

const (
	noticeMessage = "\nInterrupted. Finishing what is already in flight (press Ctrl+C again to abort)."
	abortMessage  = "\nAborted."
)

// What the listener should do with an incoming signal.
type signalAction int

const (
	ignoreSignal signalAction = iota
	cancelRun
	forceExit
)

// Handler cancels a context on the first SIGINT/SIGTERM and force-exits
// the process on the second. The first signal lets a run keep the work it
// already holds; the second is for when the user will not wait for that.
type Handler struct {
	mu          sync.Mutex
	interrupted bool
	stopped     bool

	cancel context.CancelFunc
	done   chan struct{} // closed by Stop

	exitFunc func(int)
	stderr   io.Writer
}

// Options lets tests swap the handler's process-level dependencies.
type Options struct {
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	// Stderr receives the interrupt notices. The listen goroutine writes
	// to it while the rest of the program runs, so a replacement must
	// tolerate concurrent writes; os.Stderr does.
	Stderr io.Writer
}

// NewHandler registers for SIGINT and SIGTERM and returns the handler
// together with a context that the first signal cancels.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return newHandler(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions is NewHandler with every dependency injectable.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	return newHandler(parent, opts)
}

func newHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancel:   cancel,
		done:     make(chan struct{}),
		exitFunc: opts.ExitFunc,
		stderr:   opts.Stderr,
	}
	if h.exitFunc == nil {
		h.exitFunc = os.Exit
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	// A nil channel means no listener; tests that only need the context
	// rely on that.
	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			switch h.record() {
			case cancelRun:
				fmt.Fprintln(h.stderr, noticeMessage)
				h.cancel()
			case forceExit:
				fmt.Fprintln(h.stderr, abortMessage)
				h.exitFunc(ExitCode)
				return // exitFunc normally never returns; tests stub it
			case ignoreSignal:
				return
			}
		}
	}
}

// record classifies an incoming signal under the lock.
func (h *Handler) record() signalAction {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.stopped:
		return ignoreSignal
	case h.interrupted:
		return forceExit
	default:
		h.interrupted = true
		return cancelRun
	}
}

// WasInterrupted reports whether a signal arrived during the run.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Stop detaches the handler. Call when the run completes normally.
// Safe to call more than once.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
}
