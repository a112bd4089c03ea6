package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running command on SIGINT/SIGTERM and
// prints a short note about what was kept.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	operation   string
	kept        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler. operation names what is being
// interrupted ("Import"); kept, when non-empty, explains what survives.
func NewInterruptHandler(writer io.Writer, operation, kept string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{writer: writer, operation: operation, kept: kept}
}

// HandleInterrupts returns a context that is canceled on the first signal.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancelFunc = cancel
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.interrupted {
		h.interrupted = true
		msg := "\n\n" + FormatWarning(h.operation+" interrupted!")
		if h.kept != "" {
			msg += "\n" + FormatInfo(h.kept)
		}
		if _, err := fmt.Fprintln(h.writer, msg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
		}
	}
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
