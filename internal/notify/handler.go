package notify

import (
	"context"
	"errors"
	"log"

	"github.com/jonathan/jobsearch/internal/jobapi"
)

// NetworkErrorMessage is shown for failures without a server description.
const NetworkErrorMessage = "Network error, please try again"

// Handler is the single place fetch failures end up. It turns each into a
// toast and stops it there.
type Handler struct {
	toaster *Toaster
	verbose bool
}

// NewHandler creates a handler that reports to toaster.
func NewHandler(toaster *Toaster, verbose bool) *Handler {
	return &Handler{toaster: toaster, verbose: verbose}
}

// Message converts err into the text a user sees.
func Message(err error) string {
	var apiErr *jobapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var transportErr *jobapi.TransportError
	if errors.As(err, &transportErr) {
		return NetworkErrorMessage
	}
	return err.Error()
}

// HandleError shows a toast for err. Cancellations are not failures and are ignored.
func (h *Handler) HandleError(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	if h.verbose {
		log.Printf("[notify] %v", err)
	}
	h.toaster.Error(Message(err))
}
