package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/config"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/handler"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/routes"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/service"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkgcache "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/cache"
	pkges "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/elasticsearch"
	pkgjwt "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/jwt"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
	pkgredis "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/redis"
	pkgstorage "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/storage"
)

func main() {
	loadedEnvs := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	log := pkglogger.GetLogger()
	if len(loadedEnvs) > 0 {
		log.Info().Strs("files", loadedEnvs).Msg("loaded env files")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = fmt.Sprintf("configs/config.%s.yaml", env)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Remote persistence is optional: without it every read and write
	// goes straight to the local file fallback.
	var primary storage.Backend
	if cfg.Database.Host != "" {
		db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, running on local fallback only")
		} else {
			backend, err := storage.NewGormBackend(db)
			if err != nil {
				log.Warn().Err(err).Msg("database migration failed, running on local fallback only")
			} else {
				primary = backend
			}
		}
	}

	fallback, err := storage.NewFileBackend(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare local storage")
	}
	store := storage.NewAdapter(primary, fallback)

	var cacheService pkgcache.Service
	if cfg.Redis.Host != "" {
		redisClient, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, caching disabled")
			cacheService = pkgcache.NewService(nil)
		} else {
			cacheService = pkgcache.NewService(redisClient)
		}
	} else {
		cacheService = pkgcache.NewService(nil)
	}

	var s3Client *pkgstorage.S3Client
	if cfg.S3.Enabled() {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			BasePath:        cfg.S3.BasePath,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
		})
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, mirroring disabled")
			s3Client = nil
		}
	}

	var indexer *service.ContentIndexer
	if cfg.Elasticsearch.Enabled() {
		esClient, err := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if err != nil {
			log.Warn().Err(err).Msg("elasticsearch unavailable, index mirror disabled")
		} else {
			indexer = service.NewContentIndexer(esClient)
		}
	}

	tokens := pkgjwt.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpiry)*time.Hour)
	notifier := service.NewWebhookNotifier(cfg.Notify.WebhookURL)

	activities := service.NewActivityService(store)
	metrics := service.NewMetricsService(store, activities, cacheService)
	content := service.NewContentService(store, metrics, cacheService, indexer)
	search := service.NewSearchService(store, service.NewDefaultScorer(), cacheService, indexer)
	brandTests := service.NewBrandTestService(store, metrics)
	backups := service.NewBackupService(store, activities, notifier, s3Client, cfg.Backup)
	exporter := service.NewExportService(store, s3Client, cfg.Storage.DataDir)

	router := routes.Setup(cfg, tokens, routes.Handlers{
		Auth:      handler.NewAuthHandler(tokens),
		Content:   handler.NewContentHandler(content),
		Search:    handler.NewSearchHandler(search),
		Dashboard: handler.NewDashboardHandler(metrics, activities, store),
		BrandTest: handler.NewBrandTestHandler(brandTests),
		Backup:    handler.NewBackupHandler(backups, exporter),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go backups.RunScheduler(ctx, domain.AnonymousOwner)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
