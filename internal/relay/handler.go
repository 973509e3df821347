package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"ifttt-relay/internal/notify"
)

// relaySource names the relay itself when it reports its own rejections
// through the notification channel.
const relaySource = "IFTTT logger"

// Options tunes request validation.
type Options struct {
	StrictFields bool
	MaxBodyBytes int64
}

// Handler accepts event submissions on "/" and rejects everything else with 418.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	opts       Options
	router     *mux.Router
}

// NewHandler wires the submission and fallback routes.
func NewHandler(dispatcher Dispatcher, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		dispatcher: dispatcher,
		logger:     logger,
		opts:       opts,
		router:     mux.NewRouter().SkipClean(true),
	}
	h.router.HandleFunc("/", h.Submit)
	h.router.NotFoundHandler = http.HandlerFunc(h.notFound)
	h.router.MethodNotAllowedHandler = http.HandlerFunc(h.notFound)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestID(r.Context(), uuid.NewString())
	h.router.ServeHTTP(w, r.WithContext(ctx))
}

// Submit handles POST / with a JSON event body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.reject(w, r, notify.LevelWarn,
			fmt.Errorf("%w (%s)", ErrInvalidMethod, requestInfo(r)),
			fmt.Sprintf("Method not allowed (%s)", requestInfo(r)))
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.reject(w, r, notify.LevelError, err, fmt.Sprintf("%v (%s)", err, requestInfo(r)))
		return
	}

	event, err := DecodeEvent(body, h.opts.StrictFields)
	if err != nil {
		h.reject(w, r, notify.LevelError, err, fmt.Sprintf("%v (%s)", err, requestInfo(r)))
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)
	h.logger.Debug("submission accepted", h.attrs(r, "level", event.Level.String())...)

	writeCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, notify.LevelWarn,
		fmt.Errorf("%w (%s)", ErrRouteNotFound, requestInfo(r)),
		fmt.Sprintf("Bad request: %s", requestInfo(r)))
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if h.opts.MaxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrMalformedBody, err)
	}
	return body, nil
}

// reject logs err locally, reports message through the notification channel
// and answers with the uniform 418 response.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, level notify.Level, err error, message string) {
	h.logger.Warn("request rejected", h.attrs(r, "error", err)...)
	h.dispatcher.Dispatch(r.Context(), notify.Event{
		Level:   level,
		Source:  relaySource,
		Message: message,
	})
	writeCORSHeaders(w)
	w.WriteHeader(http.StatusTeapot)
}

func (h *Handler) attrs(r *http.Request, extra ...any) []any {
	attrs := []any{"method", r.Method, "path", r.URL.Path}
	attrs = append(attrs, requestAttrs(r.Context())...)
	return append(attrs, extra...)
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", http.MethodPost)
}

// requestInfo renders "METHOD URL" for rejection messages.
func requestInfo(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s %s://%s%s", r.Method, scheme, r.Host, r.URL.RequestURI())
}
