package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	photosCollection = "photos"
	photoFormField   = "photo"
)

const errOnlyPNG = "Only PNG files are allowed"

// PhotoStore is the object-store capability the photos handler needs
type PhotoStore interface {
	ListPhotos(ctx context.Context) ([]PhotoObject, error)
	UploadPhoto(ctx context.Context, name string, body []byte) (*UploadedPhoto, error)
	DeletePhoto(ctx context.Context, name string) error
}

// PhotosHandler serves /photos and /photos/{fileName}
type PhotosHandler struct {
	store   PhotoStore
	cfg     PhotosConfig
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *CloudWatchMetrics
	now     func() time.Time
}

func NewPhotosHandler(store PhotoStore, cfg PhotosConfig, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *PhotosHandler {
	return &PhotosHandler{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
		now:     time.Now,
	}
}

func (h *PhotosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PhotosHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var err error
	switch r.Method {
	case http.MethodGet:
		err = h.list(w, r)
	case http.MethodPost:
		err = h.upload(w, r)
	case http.MethodDelete:
		err = h.delete(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
		return
	}

	if err != nil {
		returnErrorResponse(w, r, h.logger, h.metrics, err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (h *PhotosHandler) list(w http.ResponseWriter, r *http.Request) error {
	photos, err := h.store.ListPhotos(r.Context())
	if err != nil {
		return err
	}
	if photos == nil {
		photos = []PhotoObject{}
	}
	writeJSON(w, http.StatusOK, photos)
	return nil
}

func (h *PhotosHandler) upload(w http.ResponseWriter, r *http.Request) error {
	// base64 and multipart framing both inflate the body; the decoded size is checked again below
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.cfg.MaxUploadBytes)

	var (
		name string
		body []byte
		err  error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		name, body, err = h.readMultipart(r)
	} else {
		name, body, err = h.readJSON(r)
	}
	if err != nil {
		return err
	}

	if int64(len(body)) > h.cfg.MaxUploadBytes {
		return tooLarge("File too large")
	}
	if h.cfg.VerifyContent && !mimetype.Detect(body).Is(photoContentType) {
		return badRequest(errOnlyPNG)
	}

	uploaded, err := h.store.UploadPhoto(r.Context(), name, body)
	if err != nil {
		return err
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("photo.path", uploaded.Path),
		attribute.Int("photo.size", len(body)),
	)
	go h.metrics.sendCreatedRowMetric(photosCollection)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: uploaded})
	return nil
}

// readMultipart reads the "photo" form file. The stored name is generated
// from the upload time; the client's file name is ignored.
func (h *PhotosHandler) readMultipart(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, tooLarge("File too large")
		}
		return "", nil, badRequest("Invalid multipart form")
	}

	file, _, err := r.FormFile(photoFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, badRequest("No file provided")
		}
		return "", nil, err
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}

	name := fmt.Sprintf("coffee-photos_%d.png", h.now().UnixMilli())
	return name, body, nil
}

// readJSON reads a {fileName, fileData} payload. The name and extension are
// checked before the payload is decoded.
func (h *PhotosHandler) readJSON(r *http.Request) (string, []byte, error) {
	var in UploadPhoto
	if err := decodeJSON(r, &in, false); err != nil {
		return "", nil, err
	}

	name := strings.TrimLeft(strings.TrimSpace(in.FileName), "/")
	// names are flat keys; DELETE only addresses the last path segment
	if strings.Contains(name, "/") {
		return "", nil, badRequest("Invalid file name")
	}
	if !strings.HasSuffix(strings.ToLower(name), ".png") {
		return "", nil, badRequest(errOnlyPNG)
	}
	if in.FileData == "" {
		return "", nil, badRequest("No file provided")
	}

	body, err := base64.StdEncoding.DecodeString(in.FileData)
	if err != nil {
		return "", nil, badRequest("Invalid file data")
	}
	return name, body, nil
}

func (h *PhotosHandler) delete(w http.ResponseWriter, r *http.Request) error {
	name := identifier(r, photosCollection)
	if name == "" {
		return badRequest("No file name provided")
	}

	if err := h.store.DeletePhoto(r.Context(), name); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Photo deleted!"})
	return nil
}
