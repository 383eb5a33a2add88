package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
	"github.com/ironsheep/photo-enhancer/internal/storage"
)

// shutdownTimeout is how long in-flight requests get to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// Server serves the upload form, runs uploads through the enhancement
// pipeline and serves the stored files.
type Server struct {
	Config   *Config
	Log      *logrus.Logger
	Store    *storage.Store
	Pipeline *enhance.Pipeline
	Params   enhance.Params

	respond    *Responder
	enhancers  *semaphore.Weighted
	httpServer *http.Server
}

// New applies conf, creates the storage directories and builds the pipeline.
func New(conf *Config, log *logrus.Logger) (*Server, error) {
	if err := conf.Apply(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	store, err := storage.New(storage.Config{
		UploadDir:    conf.UploadDir,
		ProcessedDir: conf.ProcessedDir,
	})
	if err != nil {
		return nil, err
	}

	srv := &Server{
		Config:    conf,
		Log:       log,
		Store:     store,
		Params:    enhance.DefaultParams,
		respond:   NewResponder(),
		enhancers: semaphore.NewWeighted(int64(conf.Limits.MaxEnhancers)),
	}

	srv.Pipeline, err = enhance.New(enhance.DefaultStages(), enhance.WithObserver(srv.observeStage))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build pipeline")
	}
	return srv, nil
}

// observeStage records the duration of one pipeline stage.
func (srv *Server) observeStage(stage string, elapsed time.Duration) {
	metrics.GetOrRegisterTimer("fn.enhance."+stage, nil).Update(elapsed)
	srv.Log.WithFields(logrus.Fields{
		"stage":   stage,
		"elapsed": elapsed,
	}).Debug("enhance stage finished")
}

// NewRouter returns the HTTP handler for all routes.
func (srv *Server) NewRouter() http.Handler {
	cf := srv.Config

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(srv.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Timeout(cf.Limits.RequestTimeout))

	r.Get("/", srv.Index)
	r.Post("/upload", srv.Upload)
	r.Get("/uploads/{filename}", srv.ServeStored(storage.Originals))
	r.Get("/processed/{filename}", srv.ServeStored(storage.Processed))

	return r
}

// ListenAndServe serves on Config.Bind until ctx is done, then shuts down
// gracefully.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	srv.httpServer = &http.Server{
		Addr:              srv.Config.Bind,
		Handler:           srv.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	srv.Log.Info("closing server..")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	srv.Log.Info("server shutdown.")
	return nil
}
