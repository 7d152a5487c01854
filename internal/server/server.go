package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/jo-hoe/geminiocr/internal/common"
	"github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/llm"
	"github.com/jo-hoe/geminiocr/internal/storage"
	"github.com/jo-hoe/geminiocr/internal/util"
)

type Service struct {
	Log *slog.Logger
	Cfg *config.Config
	LLM llm.Client
}

// NewHTTPServer builds the http.Server with routes and middleware.
func NewHTTPServer(svc *Service) *http.Server {
	if svc.Log == nil {
		svc.Log = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+common.PathHealthz, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc(http.MethodPost+" "+common.PathRecognitions, svc.withCommon(svc.handleRecognize))

	s := &http.Server{
		Addr:         svc.Cfg.Server.Addr,
		Handler:      requestIDMiddleware(loggingMiddleware(recoveryMiddleware(mux, svc.Log), svc.Log)),
		ReadTimeout:  svc.Cfg.Server.ReadTimeout,
		WriteTimeout: svc.Cfg.Server.WriteTimeout,
		IdleTimeout:  svc.Cfg.Server.IdleTimeout,
	}
	return s
}

func (svc *Service) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Enforce API key if configured
		if key := strings.TrimSpace(svc.Cfg.Server.APIKey); key != "" {
			if r.Header.Get(common.HeaderAPIKey) != key {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		// Base64 inflates the image by a third; leave room for it and the JSON envelope.
		if max := safeInt64(svc.Cfg.Server.MaxUploadSize); max > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(max))
		}
		next.ServeHTTP(w, r)
	}
}

type recognizeRequest struct {
	Image string `json:"image"`
	Lang  string `json:"lang"`
}

type recognizeResponse struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

func (svc *Service) handleRecognize(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(common.HeaderContentType))
	if err != nil {
		writeError(w, r, http.StatusUnsupportedMediaType, "content type required")
		return
	}

	var in recognizeRequest
	switch mediaType {
	case common.ContentTypeJSON:
		in, err = svc.decodeJSON(r)
	case common.ContentTypeForm:
		in, err = svc.decodeMultipart(r)
	default:
		writeError(w, r, http.StatusUnsupportedMediaType, "unsupported content type: "+mediaType)
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id := requestIDFrom(r.Context())
	start := time.Now()
	text, err := svc.LLM.Recognize(r.Context(), in.Image, in.Lang)
	if err != nil {
		status := statusFor(err)
		svc.Log.Error("recognition failed", "request_id", id, "status", status, "err", err)
		writeError(w, r, status, err.Error())
		return
	}
	svc.Log.Info("recognition done", "request_id", id, "chars", len(text), "duration", time.Since(start).String())
	writeJSON(w, http.StatusOK, recognizeResponse{RequestID: id, Text: text})
}

func (svc *Service) decodeJSON(r *http.Request) (recognizeRequest, error) {
	var in recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, err
		}
		return in, errors.New("invalid json body")
	}
	image, err := storage.StripDataURL(in.Image)
	if err != nil {
		return in, err
	}
	in.Image = image
	in.Lang = strings.TrimSpace(in.Lang)
	return in, nil
}

func (svc *Service) decodeMultipart(r *http.Request) (recognizeRequest, error) {
	var in recognizeRequest
	max := safeInt64(svc.Cfg.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, err
		}
		return in, errors.New("invalid form: " + err.Error())
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return in, errors.New("file is required")
	}
	img, err := storage.ReadMultipartImage(files[0], max)
	if err != nil {
		return in, err
	}
	in.Image = img.Base64()
	in.Lang = strings.TrimSpace(r.FormValue("lang"))
	return in, nil
}

// statusFor maps recognition errors to HTTP status codes.
func statusFor(err error) int {
	var statusErr *llm.StatusError
	var corrupt base64.CorruptInputError
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusInternalServerError
	case errors.As(err, &statusErr), errors.Is(err, llm.ErrNoContent):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &corrupt):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func bodyLimit(maxUpload int64) int64 {
	const envelope = 64 * 1024
	if maxUpload > (math.MaxInt64-envelope)/4*3 {
		return math.MaxInt64
	}
	return maxUpload/3*4 + 4 + envelope
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(common.HeaderContentType, common.ContentTypeJSON)
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{RequestID: requestIDFrom(r.Context()), Error: msg})
}

func safeInt64(u config.ByteSize) int64 {
	if u > config.ByteSize(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(u) // #nosec G115 - safe cast after explicit upper-bound check
}

type ctxKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := util.RequestID(r.Header.Get(common.HeaderRequestID))
		w.Header().Set(common.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func loggingMiddleware(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &writeWrap{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(ww, r)
		log.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.code,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
			"request_id", requestIDFrom(r.Context()))
	})
}

type writeWrap struct {
	http.ResponseWriter
	code int
}

func (w *writeWrap) WriteHeader(statusCode int) {
	w.code = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func recoveryMiddleware(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic", "request_id", requestIDFrom(r.Context()), "panic", rec)
				writeError(w, r, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
