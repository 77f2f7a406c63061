package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
	"github.com/karandomguy/Store-Monitoring-System/internal/domain/metrics"
	"github.com/karandomguy/Store-Monitoring-System/internal/domain/usecase"
	"github.com/karandomguy/Store-Monitoring-System/internal/observability"
	psqlRepo "github.com/karandomguy/Store-Monitoring-System/internal/repository/psql"
	"github.com/karandomguy/Store-Monitoring-System/internal/repository/rabbitmq"
	redisRepo "github.com/karandomguy/Store-Monitoring-System/internal/repository/redis"
	"github.com/karandomguy/Store-Monitoring-System/internal/repository/s3"
	"github.com/karandomguy/Store-Monitoring-System/pkg/client/psql"
	redisGo "github.com/karandomguy/Store-Monitoring-System/pkg/client/redis"
	s3ClientGo "github.com/karandomguy/Store-Monitoring-System/pkg/client/s3"
)

const (
	reportExchange   = "reports.exchange"
	reportRoutingKey = "reports.requested"
	reportQueue      = "reports.requested.q"
)

type Config struct {
	RedisAddr string
	RedisDB   int

	PSQLHost     string
	PSQLPort     int
	PSQLUser     string
	PSQLPassword string
	PSQLDBName   string
	PSQLSSLMode  string

	S3Host      string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	RabbitMQURL string

	PoolSize        int
	JobTimeout      time.Duration
	DefaultTimezone string
	LeadingGap      metrics.LeadingGapPolicy
	ProgressEvery   int
	MetricsCacheTTL time.Duration
	MetricsAddr     string
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	redisClient, err := redisGo.NewRedisClient(ctx, redisGo.Config{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	statusRepo := redisRepo.NewStatusRepo(redisClient)
	metricsCache := redisRepo.NewMetricsCache(redisClient, cfg.MetricsCacheTTL)

	db, err := psql.NewPostgresDB(psql.Config{
		Host:     cfg.PSQLHost,
		User:     cfg.PSQLUser,
		Password: cfg.PSQLPassword,
		DBName:   cfg.PSQLDBName,
		Port:     cfg.PSQLPort,
		SslMode:  cfg.PSQLSSLMode,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := db.AutoMigrate(&entity.Report{}, &entity.StorePoll{}, &entity.BusinessHours{}, &entity.StoreTimezone{}); err != nil {
		log.Fatalf("failed to migrate tables: %v", err)
	}

	reportRepo := psqlRepo.NewReportRepo(db)
	datasetRepo := psqlRepo.NewDatasetRepo(db)

	s3Client, err := s3ClientGo.NewS3Client(cfg.S3Host, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		log.Fatalf("failed to init s3 client: %v", err)
	}
	sink := s3.NewReportSink(s3Client)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	recorder := observability.New()

	generator := usecase.NewGeneratorUseCase(datasetRepo, reportRepo, statusRepo, sink, metricsCache, recorder, usecase.GeneratorConfig{
		PoolSize:        cfg.PoolSize,
		JobTimeout:      cfg.JobTimeout,
		DefaultTimezone: cfg.DefaultTimezone,
		LeadingGap:      cfg.LeadingGap,
		ProgressEvery:   cfg.ProgressEvery,
	})

	consumer, err := rabbitmq.NewReportConsumer(conn, reportExchange, reportRoutingKey, reportQueue, generator)
	if err != nil {
		log.Fatalf("failed to init consumer: %v", err)
	}

	go func() {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server stopped: %v", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("consumer stopped with error: %v", err)
		}
	}()

	log.Println("Report worker started")
	<-sigCh
	log.Println("Shutting down report worker...")
	cancel()
	time.Sleep(time.Second)
}

func loadConfig() Config {
	if err := godotenv.Load("./.env.local"); err != nil {
		log.Println("No .env file found. Falling back to OS environment variables.")
	}
	mustGetEnv := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			log.Fatalf("Environment variable %s is not set", key)
		}
		return val
	}
	intEnv := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Invalid %s value: %v", key, err)
		}
		return n
	}
	durationEnv := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid %s value: %v", key, err)
		}
		return d
	}

	// REDIS
	redisHost := mustGetEnv("REDIS_HOST")
	redisPort := mustGetEnv("REDIS_PORT")
	redisDB := intEnv("REDIS_DB", 0)

	// PSQL
	psqlPort, err := strconv.Atoi(mustGetEnv("PSQL_PORT"))
	if err != nil {
		log.Fatalf("Invalid PSQL_PORT value: %v", err)
	}

	// RABBITMQ
	rmqUser := mustGetEnv("RABBITMQ_USER")
	rmqPassword := mustGetEnv("RABBITMQ_PASSWORD")
	rmqHost := mustGetEnv("RABBITMQ_HOST")
	rmqPort := mustGetEnv("RABBITMQ_PORT")
	rabbitMQURL := "amqp://" + rmqUser + ":" + rmqPassword + "@" + rmqHost + ":" + rmqPort + "/"

	leadingGap := metrics.LeadingGapUnknown
	switch os.Getenv("LEADING_GAP_POLICY") {
	case "", "unknown":
	case "assume_first":
		leadingGap = metrics.LeadingGapAssumeFirst
	default:
		log.Fatalf("Invalid LEADING_GAP_POLICY value: %q", os.Getenv("LEADING_GAP_POLICY"))
	}

	defaultTZ := os.Getenv("DEFAULT_TIMEZONE")
	if defaultTZ == "" {
		defaultTZ = "America/Chicago"
	}
	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9090"
	}

	return Config{
		RedisAddr: redisHost + ":" + redisPort,
		RedisDB:   redisDB,

		PSQLHost:     mustGetEnv("PSQL_HOST"),
		PSQLPort:     psqlPort,
		PSQLUser:     mustGetEnv("PSQL_USER"),
		PSQLPassword: mustGetEnv("PSQL_PASSWORD"),
		PSQLDBName:   mustGetEnv("PSQL_DB"),
		PSQLSSLMode:  mustGetEnv("PSQL_SSLMODE"),

		S3Host:      mustGetEnv("S3_HOST") + ":" + mustGetEnv("S3_PORT"),
		S3Bucket:    mustGetEnv("S3_BUCKET"),
		S3AccessKey: mustGetEnv("S3_ACCESS_KEY"),
		S3SecretKey: mustGetEnv("S3_SECRET_KEY"),

		RabbitMQURL: rabbitMQURL,

		PoolSize:        intEnv("WORKER_POOL_SIZE", 8),
		JobTimeout:      durationEnv("REPORT_JOB_TIMEOUT", 55*time.Minute),
		DefaultTimezone: defaultTZ,
		LeadingGap:      leadingGap,
		ProgressEvery:   intEnv("REPORT_PROGRESS_EVERY", 100),
		MetricsCacheTTL: durationEnv("REPORT_CACHE_TTL", time.Hour),
		MetricsAddr:     metricsAddr,
	}
}
