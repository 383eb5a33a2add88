package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
	"github.com/ironsheep/photo-enhancer/internal/imaging"
	"github.com/ironsheep/photo-enhancer/internal/storage"
)

// InvalidFormatMessage is returned for uploads that are not a supported image.
const InvalidFormatMessage = "Invalid file format. Please upload a valid image."

// UploadResult describes a processed upload.
type UploadResult struct {
	OriginalURL  string          `json:"original_url"`
	ProcessedURL string          `json:"processed_url"`
	Original     imaging.Summary `json:"original"`
	Processed    imaging.Summary `json:"processed"`
}

// Index serves the upload form.
func (srv *Server) Index(w http.ResponseWriter, r *http.Request) {
	_ = srv.respond.HTML(w, http.StatusOK, "index", nil)
}

// Upload stores the "photo" file, enhances it and links to both versions.
func (srv *Server) Upload(w http.ResponseWriter, r *http.Request) {
	log := srv.requestLog(r)
	r.Body = http.MaxBytesReader(w, r.Body, srv.Config.Limits.MaxUploadBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			srv.reject(w, log, http.StatusRequestEntityTooLarge, "Upload too large.", err)
			return
		}
		log.WithError(err).Debug("no photo in upload")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if header.Filename == "" || header.Size == 0 {
		log.Debug("empty photo in upload")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := storage.SecureFilename(header.Filename)
	if name == "" || !imaging.IsAllowedExtension(name) {
		srv.reject(w, log, http.StatusOK, InvalidFormatMessage,
			errors.Errorf("filename %q not allowed", header.Filename))
		return
	}
	log = log.WithField("file", name)

	if _, err := srv.Store.SaveOriginal(name, file); err != nil {
		log.WithError(err).Error("failed to save upload")
		srv.respond.PlainError(w, http.StatusInternalServerError, "Failed to save upload.")
		return
	}

	res, err := srv.Process(r.Context(), name)
	if err != nil {
		if r.Context().Err() != nil {
			// The Timeout middleware answers expired requests with 504; a
			// canceled request has no client left to answer.
			metrics.GetOrRegisterCounter("upload.rejected", nil).Inc(1)
			log.WithError(err).Warn("upload abandoned")
			return
		}
		status, msg := errorStatus(err)
		srv.reject(w, log, status, msg, err)
		return
	}
	log.Info("upload enhanced")

	if wantsJSON(r) {
		_ = srv.respond.JSON(w, http.StatusOK, res)
		return
	}
	_ = srv.respond.HTML(w, http.StatusOK, "result", res)
}

// Process enhances the original stored under name and writes the result.
// At most Limits.MaxEnhancers calls run the pipeline at once.
func (srv *Server) Process(ctx context.Context, name string) (*UploadResult, error) {
	if err := srv.enhancers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer srv.enhancers.Release(1)

	origPath, err := srv.Store.OriginalPath(name)
	if err != nil {
		return nil, err
	}
	buf, _, err := imaging.DecodeFile(origPath, srv.Config.Limits.MaxPixels)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := srv.Pipeline.Run(buf, srv.Params)
	if err != nil {
		return nil, err
	}
	metrics.GetOrRegisterTimer("fn.enhance.Run", nil).UpdateSince(start)

	// The client may have gone away while the pipeline ran.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outPath, err := srv.Store.ProcessedPath(name)
	if err != nil {
		return nil, err
	}
	if err := imaging.Encode(out, outPath); err != nil {
		return nil, err
	}

	return &UploadResult{
		OriginalURL:  "/uploads/" + name,
		ProcessedURL: "/processed/" + storage.ProcessedName(name),
		Original:     imaging.Summarize(buf),
		Processed:    imaging.Summarize(out),
	}, nil
}

// ServeStored serves files of the given kind by their stored name.
func (srv *Server) ServeStored(kind storage.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		path, info, err := srv.Store.Stat(kind, name)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrInvalidFilename):
			srv.respond.PlainError(w, http.StatusBadRequest, "Invalid filename.")
			return
		case errors.Is(err, os.ErrNotExist):
			http.NotFound(w, r)
			return
		default:
			srv.requestLog(r).WithError(err).Error("failed to stat stored file")
			srv.respond.PlainError(w, http.StatusInternalServerError, "Internal error.")
			return
		}

		f, err := os.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}

// errorStatus maps a processing error to a response status and message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, InvalidFormatMessage
	case errors.Is(err, enhance.ErrInvalidImage):
		return http.StatusUnprocessableEntity, "Invalid image."
	case errors.Is(err, imaging.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "Image dimensions too large."
	default:
		return http.StatusInternalServerError, "Failed to process image."
	}
}

// reject counts and logs a refused upload and writes msg.
func (srv *Server) reject(w http.ResponseWriter, log *logrus.Entry, status int, msg string, err error) {
	metrics.GetOrRegisterCounter("upload.rejected", nil).Inc(1)
	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("upload failed")
	} else {
		entry.Warn("upload rejected")
	}
	srv.respond.PlainError(w, status, msg)
}

func (srv *Server) requestLog(r *http.Request) *logrus.Entry {
	return srv.Log.WithField("req_id", middleware.GetReqID(r.Context()))
}

// wantsJSON reports whether the client asked for JSON over HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
