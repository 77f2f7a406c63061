package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
	"github.com/karandomguy/Store-Monitoring-System/internal/loader"
	"github.com/karandomguy/Store-Monitoring-System/pkg/client/psql"
)

type Config struct {
	PSQLHost     string
	PSQLPort     int
	PSQLUser     string
	PSQLPassword string
	PSQLDBName   string
	PSQLSSLMode  string

	DataDir string
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

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
	if err := db.AutoMigrate(&entity.StorePoll{}, &entity.BusinessHours{}, &entity.StoreTimezone{}); err != nil {
		log.Fatalf("failed to migrate tables: %v", err)
	}

	l := loader.New(db)

	type job struct {
		file string
		run  func(ctx context.Context, f *os.File) (loader.Stats, error)
	}
	jobs := []job{
		{"store_status.csv", func(ctx context.Context, f *os.File) (loader.Stats, error) {
			return l.LoadStorePolls(ctx, f)
		}},
		{"menu_hours.csv", func(ctx context.Context, f *os.File) (loader.Stats, error) {
			return l.LoadBusinessHours(ctx, f)
		}},
		{"timezones.csv", func(ctx context.Context, f *os.File) (loader.Stats, error) {
			return l.LoadTimezones(ctx, f)
		}},
	}

	for _, j := range jobs {
		path := filepath.Join(cfg.DataDir, j.file)
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("open %s: %v", path, err)
		}
		stats, err := j.run(ctx, f)
		f.Close()
		if err != nil {
			log.Fatalf("load %s: %v", j.file, err)
		}
		log.Printf("%s: %d rows inserted, %d skipped", j.file, stats.Inserted, stats.Skipped)
	}
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

	psqlPort, err := strconv.Atoi(mustGetEnv("PSQL_PORT"))
	if err != nil {
		log.Fatalf("Invalid PSQL_PORT value: %v", err)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	return Config{
		PSQLHost:     mustGetEnv("PSQL_HOST"),
		PSQLPort:     psqlPort,
		PSQLUser:     mustGetEnv("PSQL_USER"),
		PSQLPassword: mustGetEnv("PSQL_PASSWORD"),
		PSQLDBName:   mustGetEnv("PSQL_DB"),
		PSQLSSLMode:  mustGetEnv("PSQL_SSLMODE"),

		DataDir: dataDir,
	}
}
