package main

import (
	"fmt"

	exportRepository "github.com/amankumarsingh77/slidecast/internal/export/repository"
	"github.com/amankumarsingh77/slidecast/internal/server"
	"github.com/amankumarsingh77/slidecast/pkg/db/aws"
	"github.com/amankumarsingh77/slidecast/pkg/db/postgres"
	"github.com/amankumarsingh77/slidecast/pkg/db/redis"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	goredis "github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the export HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := loadApp()
	if err != nil {
		return err
	}
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)
	ctx := cmd.Context()

	var psqlDB *sqlx.DB
	if cfg.Postgres.Enabled {
		psqlDB, err = postgres.NewPsqlDB(cfg)
		if err != nil {
			return fmt.Errorf("could not connect to db: %w", err)
		}
		defer psqlDB.Close()
		if err := exportRepository.EnsureSchema(ctx, psqlDB); err != nil {
			return err
		}
		appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}
		defer redisClient.Close()
		appLogger.Infof("redis connected")
	}

	var s3Client *s3.Client
	var presignClient *s3.PresignClient
	if cfg.S3.Enabled {
		s3Client, presignClient, err = aws.NewAWSClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("could not connect to s3: %w", err)
		}
		appLogger.Infof("s3 mirror enabled for bucket %s", cfg.S3.Bucket)
	}

	s := server.NewServer(cfg, psqlDB, redisClient, s3Client, presignClient, appLogger)
	if err := s.Run(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
