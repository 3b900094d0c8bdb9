package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	s3blob "github.com/predmarkets/arbscan/internal/blob/s3"
	"github.com/predmarkets/arbscan/internal/cache/redis"
	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/matcher"
	"github.com/predmarkets/arbscan/internal/normalizer"
	"github.com/predmarkets/arbscan/internal/notify"
	"github.com/predmarkets/arbscan/internal/oracle"
	"github.com/predmarkets/arbscan/internal/platform/kalshi"
	"github.com/predmarkets/arbscan/internal/platform/polymarket"
	"github.com/predmarkets/arbscan/internal/ranker"
	"github.com/predmarkets/arbscan/internal/scanner"
	"github.com/predmarkets/arbscan/internal/store/postgres"
	"github.com/predmarkets/arbscan/internal/valuator"
)

// Dependencies bundles everything the application modes need. It is built by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Scanner *scanner.Scanner
	Latest  *LatestHolder

	// Optional collaborators; nil when their backend is disabled.
	PairStore        domain.PairStore
	OpportunityStore domain.OpportunityStore
	DedupStore       domain.DedupStore

	Notifier *notify.Notifier
}

// Wire constructs every concrete dependency from the configuration. Optional
// backends (Postgres, Redis, S3) are skipped when disabled; a backend that is
// enabled but unreachable is a startup error.
func Wire(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Latest: &LatestHolder{}}

	// --- Venue clients ---
	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read kalshi key: %w", err)
		}
		if err := kalshiClient.SetRSAPrivateKey(pemBytes); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
	}
	gammaClient := polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	// --- Semantic oracle ---
	var comparator domain.Comparator = oracle.NewHeuristic()
	if cfg.Oracle.ApiKey != "" {
		comparator = oracle.NewOpenAI(cfg.Oracle)
	}

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.PairStore = postgres.NewPairStore(pool)
		deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	}

	// --- Redis ---
	var pairCache matcher.PairCache
	var redisPublisher domain.CyclePublisher
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		pairCache = redis.NewPairCache(redisClient)
		deps.DedupStore = redis.NewDedupStore(redisClient, cfg.Redis.AlertDedupTTL.Duration)
		redisPublisher = redis.NewPublisher(redisClient)
	}

	// --- S3 cycle archive ---
	var archiver domain.CycleArchiver
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), cfg.S3.Prefix)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, log)

	// --- Pipeline ---
	norm := normalizer.New(log, cfg.Scanner)
	match := matcher.New(log, cfg.Matcher, deps.PairStore, comparator, pairCache)
	value := valuator.New(log, cfg.Engine)
	rank := ranker.New(log, cfg.Engine)

	scan := scanner.New(log, *cfg, kalshiClient, gammaClient, norm, match, value, rank)
	scan.AddPublisher(deps.Latest)
	if deps.OpportunityStore != nil {
		scan.SetStore(deps.OpportunityStore)
	}
	if redisPublisher != nil {
		scan.AddPublisher(redisPublisher)
	}
	if archiver != nil {
		scan.SetArchiver(archiver)
	}
	if len(senders) > 0 {
		scan.AddPublisher(notify.NewAlerter(log, deps.Notifier, deps.DedupStore))
	}
	deps.Scanner = scan

	return deps, cleanup, nil
}
