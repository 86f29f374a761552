package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amankumarsingh77/slidecast/internal/config"
	exportUsecase "github.com/amankumarsingh77/slidecast/internal/export/usecase"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/worker"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	maxHeaderBytes = 1 << 20
	bodyLimit      = "4M"
)

// Server owns the HTTP API and the background export machinery. db,
// redisClient and s3Client are optional.
type Server struct {
	echo          *echo.Echo
	cfg           *config.Config
	db            *sqlx.DB
	redisClient   *redis.Client
	s3Client      *s3.Client
	preSignClient *s3.PresignClient
	logger        logger.Logger

	registry *jobs.Registry
	executor worker.Executor
	events   *exportUsecase.JobEvents
}

func NewServer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, s3Client *s3.Client, preSignClient *s3.PresignClient, logger logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	return &Server{
		echo:          e,
		cfg:           cfg,
		db:            db,
		redisClient:   redisClient,
		s3Client:      s3Client,
		preSignClient: preSignClient,
		logger:        logger,
	}
}

func (s *Server) useMiddlewares() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
		MaxAge:       300,
	}))
	s.echo.Use(middleware.BodyLimit(bodyLimit))
}

// Run serves until SIGINT or SIGTERM, then stops accepting requests, drains
// running exports and flushes pending job events.
func (s *Server) Run() error {
	if err := s.MapHandlers(s.echo); err != nil {
		return err
	}
	s.useMiddlewares()

	background, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.registry.RunJanitor(background, s.cfg.Export.SweepInterval, func(removed int) {
			s.logger.Debugf("Swept %d expired export jobs", removed)
		})
	}()
	if s.events != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.events.Run(background)
		}()
	}

	server := &http.Server{
		Addr:           s.cfg.Server.Port,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Infof("Server is listening on PORT: %s", s.cfg.Server.Port)
		if err := s.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(quit)
	var runErr error
	select {
	case <-quit:
	case runErr = <-serveErr:
		s.logger.Errorf("error starting server: %v", runErr)
	}

	ctx, shutdown := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer shutdown()
	s.logger.Infof("shutting down server")
	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Errorf("echo shutdown: %v", err)
	}
	if err := s.executor.Shutdown(ctx); err != nil {
		s.logger.Warnf("exports still running at shutdown were cancelled: %v", err)
	}
	stopBackground()
	wg.Wait()
	if s.events != nil && s.events.Dropped() > 0 {
		s.logger.Warnf("%d job events were dropped", s.events.Dropped())
	}
	return runErr
}
