// cmd/signup-server/wiring.go
package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	awsclient "activity-signup/internal/common/aws"
	"activity-signup/internal/common/config"
	"activity-signup/internal/common/database"
	httpclient "activity-signup/internal/common/http"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/listeners"
	auditlog "activity-signup/internal/listeners/audit-log"
	eventindex "activity-signup/internal/listeners/event-index"
	rostermirror "activity-signup/internal/listeners/roster-mirror"
	signupnotification "activity-signup/internal/listeners/signup-notification"
	"activity-signup/internal/models"
	"activity-signup/internal/server"
	"activity-signup/pkg/catalog"
)

const (
	connectRetries  = 10
	connectDelay    = 2 * time.Second
	outboundTimeout = 10 * time.Second
)

// backends holds the optional stores behind the listeners. Disabled stores
// stay nil.
type backends struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
}

func (b *backends) Close() {
	if b.pg != nil {
		_ = b.pg.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// HealthChecks returns one readiness check per enabled store.
func (b *backends) HealthChecks() []server.HealthCheck {
	var checks []server.HealthCheck
	if b.pg != nil {
		checks = append(checks, server.HealthCheck{Name: "postgres", Check: b.pg.Ping})
	}
	if b.redis != nil {
		checks = append(checks, server.HealthCheck{Name: "redis", Check: b.redis.Ping})
	}
	if b.es != nil {
		checks = append(checks, server.HealthCheck{Name: "elasticsearch", Check: b.es.Ping})
	}
	return checks
}

// wiredListeners exposes the listeners other components read from.
type wiredListeners struct {
	audit  *auditlog.Handler
	mirror *rostermirror.Handler
}

func loadCatalog(cfg config.RegistryConfig) (map[string]models.Activity, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default().Records(), nil
	}
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return c.Records(), nil
}

func connectBackends(ctx context.Context, cfg *config.Config, outbound *httpclient.Client, zapLog *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Database.Postgres.Enabled {
		err := retryWithBackoff(func() error {
			if b.pg == nil {
				pg, err := database.NewPostgres(cfg.Database.Postgres)
				if err != nil {
					return err
				}
				b.pg = pg
			}
			return b.pg.Ping(ctx)
		}, connectRetries, connectDelay, zapLog, "PostgreSQL connection")
		if err != nil {
			b.Close()
			return nil, err
		}

		applied, err := b.pg.Migrate(ctx)
		if err != nil {
			b.Close()
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully", zap.Strings("migrations", applied))
	}

	if cfg.Database.Redis.Enabled {
		b.redis = database.NewRedis(cfg.Database.Redis)
		err := retryWithBackoff(func() error {
			return b.redis.Ping(ctx)
		}, connectRetries, connectDelay, zapLog, "Redis connection")
		if err != nil {
			b.Close()
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
	}

	if cfg.Search.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Search.Elasticsearch, outbound.Transport())
		if err != nil {
			b.Close()
			return nil, err
		}
		err = retryWithBackoff(func() error {
			return es.Ping(ctx)
		}, connectRetries, connectDelay, zapLog, "Elasticsearch connection")
		if err != nil {
			b.Close()
			return nil, err
		}
		created, err := es.EnsureIndex(ctx, cfg.Search.Elasticsearch.Index, eventindex.IndexMapping)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.es = es
		zapLog.Info("Elasticsearch connected successfully",
			zap.String("index", cfg.Search.Elasticsearch.Index),
			zap.Bool("indexCreated", created),
		)
	}

	return b, nil
}

func registerListeners(ctx context.Context, cfg *config.Config, b *backends, outbound *httpclient.Client, d *listeners.Dispatcher, log logger.Logger) (*wiredListeners, error) {
	wired := &wiredListeners{}

	if lc := auditlog.LoadConfig(cfg); lc.Enabled && b.pg != nil {
		wired.audit = auditlog.NewHandler(lc, b.pg.GetDB(), log)
		d.Register(wired.audit, lc.Timeout)
	}

	if lc := rostermirror.LoadConfig(cfg); lc.Enabled && b.redis != nil {
		wired.mirror = rostermirror.NewHandler(lc, b.redis.GetClient(), log)
		d.Register(wired.mirror, lc.Timeout)
	}

	if lc := eventindex.LoadConfig(cfg); lc.Enabled && b.es != nil {
		d.Register(eventindex.NewHandler(lc, b.es.Client, log), lc.Timeout)
	}

	if lc := signupnotification.LoadConfig(cfg); lc.Enabled() {
		var sesSvc signupnotification.SESService
		var snsSvc signupnotification.SNSService

		if lc.EmailEnabled {
			client, err := awsclient.NewSESClient(ctx, lc.AWSRegion, func(o *ses.Options) { o.HTTPClient = outbound })
			if err != nil {
				return nil, err
			}
			sesSvc = client
		}
		if lc.TopicEnabled {
			client, err := awsclient.NewSNSClient(ctx, lc.AWSRegion, func(o *sns.Options) { o.HTTPClient = outbound })
			if err != nil {
				return nil, err
			}
			snsSvc = client
		}
		d.Register(signupnotification.NewHandler(lc, sesSvc, snsSvc, log), lc.Timeout)
	}

	return wired, nil
}
