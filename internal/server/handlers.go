package server

import (
	"net/http"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	exportHttp "github.com/amankumarsingh77/slidecast/internal/export/delivery/http"
	exportRepository "github.com/amankumarsingh77/slidecast/internal/export/repository"
	exportUsecase "github.com/amankumarsingh77/slidecast/internal/export/usecase"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/pipeline"
	"github.com/amankumarsingh77/slidecast/internal/tools"
	"github.com/amankumarsingh77/slidecast/internal/worker"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/labstack/echo/v4"
)

const eventBuffer = 256

// NewExportPipeline wires the external tools into a pipeline.
func NewExportPipeline(cfg *config.Config, log logger.Logger) *pipeline.Pipeline {
	runner := tools.ExecRunner{}
	return pipeline.NewPipeline(
		cfg,
		tools.NewMarpRenderer(cfg, runner),
		tools.NewEdgeTTSSynthesizer(cfg, runner),
		tools.NewFFmpegEncoder(cfg, runner),
		log,
	)
}

func (s *Server) MapHandlers(e *echo.Echo) error {
	s.registry = jobs.NewRegistry(s.cfg.Export.Retention)
	if s.redisClient != nil {
		eRedisRepo := exportRepository.NewExportRedisRepo(s.redisClient, s.cfg)
		s.events = exportUsecase.NewJobEvents(eRedisRepo, s.logger, eventBuffer)
		s.registry.WithObserver(s.events.Observe)
	}

	var eAWSRepo export.AWSRepository
	if s.s3Client != nil {
		eAWSRepo = exportRepository.NewAwsRepository(s.cfg, s.s3Client, s.preSignClient)
	}
	artifactRepo := exportRepository.NewArtifactRepo(s.cfg, eAWSRepo, s.logger)
	historyRepo := exportRepository.NewExportRepo(s.db)

	exportPipeline := NewExportPipeline(s.cfg, s.logger)
	s.executor = worker.NewExecutor(s.cfg, s.logger)
	jobRunner := worker.NewRunner(s.registry, exportPipeline, s.executor, artifactRepo, historyRepo, s.logger)

	exportUC := exportUsecase.NewExportUseCase(s.cfg, s.registry, jobRunner, artifactRepo, historyRepo, exportPipeline.Tools(), s.logger)
	exportHandlers := exportHttp.NewExportHandler(exportUC, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	exportGroup := v1.Group("/exports")

	exportHttp.MapExportRoutes(exportGroup, exportHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
