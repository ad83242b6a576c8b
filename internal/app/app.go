// Package app wires stores, services and handlers from configuration. The
// same wiring serves cmd/server and the end-to-end tests.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	adminhandler "github.com/bossygit/digital-medical-certificate-system/internal/admin/handler"
	adminservice "github.com/bossygit/digital-medical-certificate-system/internal/admin/service"
	authhandler "github.com/bossygit/digital-medical-certificate-system/internal/auth/handler"
	authmetrics "github.com/bossygit/digital-medical-certificate-system/internal/auth/metrics"
	authservice "github.com/bossygit/digital-medical-certificate-system/internal/auth/service"
	"github.com/bossygit/digital-medical-certificate-system/internal/auth/store/revocation"
	userstore "github.com/bossygit/digital-medical-certificate-system/internal/auth/store/user"
	certhandler "github.com/bossygit/digital-medical-certificate-system/internal/certificate/handler"
	certmetrics "github.com/bossygit/digital-medical-certificate-system/internal/certificate/metrics"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/qr"
	certservice "github.com/bossygit/digital-medical-certificate-system/internal/certificate/service"
	certstore "github.com/bossygit/digital-medical-certificate-system/internal/certificate/store"
	doctorhandler "github.com/bossygit/digital-medical-certificate-system/internal/doctor/handler"
	doctorservice "github.com/bossygit/digital-medical-certificate-system/internal/doctor/service"
	doctorstore "github.com/bossygit/digital-medical-certificate-system/internal/doctor/store"
	jwttoken "github.com/bossygit/digital-medical-certificate-system/internal/jwt_token"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/consumer"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/producer"
	platformmetrics "github.com/bossygit/digital-medical-certificate-system/internal/platform/metrics"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
	platformredis "github.com/bossygit/digital-medical-certificate-system/internal/platform/redis"
	ratelimitmetrics "github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/metrics"
	ratelimitmw "github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/middleware"
	ratelimitmodels "github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/store/bucket"
	httptransport "github.com/bossygit/digital-medical-certificate-system/internal/transport/http"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	auditconsumer "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/consumer"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/publisher"
	auditmemory "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/store/memory"
	auditpostgres "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/store/postgres"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/worker"
	authmw "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/auth"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

const (
	auditBuffer         = 1024
	revocationPurgeTick = time.Hour
)

// Collectors register on the default registry, which allows one set per process.
var (
	metricsOnce sync.Once
	collectors  struct {
		http        *platformmetrics.Metrics
		auth        *authmetrics.Metrics
		certificate *certmetrics.Metrics
		ratelimit   *ratelimitmetrics.Metrics
	}
)

func sharedMetrics() {
	metricsOnce.Do(func() {
		collectors.http = platformmetrics.New(nil)
		collectors.auth = authmetrics.New()
		collectors.certificate = certmetrics.New()
		collectors.ratelimit = ratelimitmetrics.New()
	})
}

type accountStore interface {
	adminservice.AccountStore
	doctorstore.AccountReader
}

type revocationList interface {
	authservice.TokenRevocationList
}

// App holds the assembled HTTP handler and every background worker.
type App struct {
	Handler http.Handler

	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	redis     *platformredis.Client
	audit     *publisher.Publisher
	producer  *producer.Producer
	relay     *worker.Relay
	consumer  *consumer.Consumer
	purgeable *revocation.PostgresTRL
}

// New connects the configured backends and builds the router. Without a
// database URL every store is in memory.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	sharedMetrics()
	a := &App{cfg: cfg, logger: logger}
	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var (
		users      accountStore
		doctors    adminservice.DoctorStore
		certs      certservice.Store
		trl        revocationList
		auditStore audit.Store
		buckets    ratelimitmw.BucketStore
		runner     tx.Runner = tx.Noop{}
	)
	if a.db != nil {
		users = userstore.NewPostgres(a.db)
		doctors = doctorstore.NewPostgres(a.db)
		certs = certstore.NewPostgres(a.db)
		runner = tx.NewPostgres(a.db)
		var opts []auditpostgres.Option
		if cfg.Kafka.Enabled() {
			opts = append(opts, auditpostgres.WithOutbox())
		}
		auditStore = auditpostgres.New(a.db, opts...)
	} else {
		memUsers := userstore.New()
		users = memUsers
		doctors = doctorstore.NewInMemoryStore(memUsers)
		certs = certstore.NewInMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
	}
	switch {
	case a.redis != nil:
		trl = revocation.NewRedisTRL(a.redis.Client)
		buckets = bucket.NewRedisBucketStore(a.redis.Client)
	case a.db != nil:
		a.purgeable = revocation.NewPostgresTRL(a.db)
		trl = a.purgeable
		buckets = bucket.NewInMemoryBucketStore()
	default:
		trl = revocation.NewInMemoryTRL(time.Now)
		buckets = bucket.NewInMemoryBucketStore()
	}
	a.audit = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(logger),
	)

	if err := a.seedAdmin(ctx, users); err != nil {
		a.Close()
		return nil, err
	}

	handler, err := a.buildRouter(users, doctors, certs, trl, buckets, runner)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Handler = handler

	if cfg.Kafka.Enabled() && a.db != nil {
		if err := a.startAuditPipeline(ctx, auditStore, runner); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	if a.cfg.Database.Enabled() {
		db, err := postgres.Open(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		a.db = db
		if a.cfg.Database.MigrateOnStart {
			if err := postgres.RunMigrations(db); err != nil {
				return err
			}
		}
	}
	client, err := platformredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = client
	return nil
}

func (a *App) seedAdmin(ctx context.Context, users accountStore) error {
	auth := a.cfg.Auth
	if auth.BootstrapAdminEmail == "" || auth.BootstrapAdminPassword == "" {
		return nil
	}
	admin, created, err := adminservice.SeedAdmin(ctx, users, adminservice.SeedAdminCommand{
		Email:     auth.BootstrapAdminEmail,
		Password:  auth.BootstrapAdminPassword,
		FirstName: "DGTT",
		LastName:  "Administrator",
	}, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		a.logger.Info("bootstrap admin created", "user_id", admin.ID)
		_ = a.audit.Emit(ctx, audit.Event{
			UserID:     admin.ID,
			Action:     string(audit.EventAdminSeeded),
			TargetType: "user",
			TargetID:   admin.ID.String(),
		})
	}
	return nil
}

func (a *App) buildRouter(
	users accountStore,
	doctors adminservice.DoctorStore,
	certs certservice.Store,
	trl revocationList,
	buckets ratelimitmw.BucketStore,
	runner tx.Runner,
) (http.Handler, error) {
	logger := a.logger
	jwt := jwttoken.NewJWTService(a.cfg.Auth.JWTSigningKey, a.cfg.Auth.JWTIssuer, a.cfg.Auth.JWTAudience)

	authSvc, err := authservice.New(users, jwt, trl,
		authservice.WithLogger(logger),
		authservice.WithAuditPublisher(a.audit),
		authservice.WithMetrics(collectors.auth),
		authservice.WithTokenTTL(a.cfg.Auth.TokenTTL),
	)
	if err != nil {
		return nil, err
	}

	directory, err := doctorservice.NewDirectory(doctors)
	if err != nil {
		return nil, err
	}
	encoder, err := qr.NewEncoder(a.cfg.Verification.BaseURL)
	if err != nil {
		return nil, err
	}
	certSvc, err := certservice.New(certs, directory, encoder,
		certservice.WithLogger(logger),
		certservice.WithAuditPublisher(a.audit),
		certservice.WithMetrics(collectors.certificate),
		certservice.WithTxRunner(runner),
	)
	if err != nil {
		return nil, err
	}

	doctorSvc, err := doctorservice.New(doctors, users, certSvc,
		doctorservice.WithLogger(logger),
		doctorservice.WithAuditPublisher(a.audit),
		doctorservice.WithTxRunner(runner),
	)
	if err != nil {
		return nil, err
	}

	adminSvc, err := adminservice.New(users, doctors, certSvc,
		adminservice.WithLogger(logger),
		adminservice.WithAuditPublisher(a.audit),
		adminservice.WithAuditReader(a.audit),
		adminservice.WithTxRunner(runner),
		adminservice.WithTempPasswordTTL(a.cfg.Doctor.TempPasswordTTL),
	)
	if err != nil {
		return nil, err
	}

	limiter := ratelimitmw.New(buckets, logger,
		ratelimitmw.WithAuditPublisher(a.audit),
		ratelimitmw.WithMetrics(collectors.ratelimit),
	)
	verifyPolicy := ratelimitmodels.Policy{
		Limit:  a.cfg.Verification.RateLimit,
		Window: a.cfg.Verification.RateWindow,
	}

	return httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		Auth:           authhandler.New(authSvc, logger),
		Certificates:   certhandler.New(certSvc, logger),
		Doctors:        doctorhandler.New(doctorSvc, logger),
		Admin:          adminhandler.New(adminSvc, logger),
		RequireAuth:    authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(jwt), authSvc, logger),
		VerifyLimit:    limiter.PerIP("verify", verifyPolicy),
		Metrics:        collectors.http,
		HealthChecks:   a.healthChecks(),
	}), nil
}

func (a *App) healthChecks() map[string]httptransport.HealthCheck {
	checks := make(map[string]httptransport.HealthCheck)
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	return checks
}

// startAuditPipeline relays the outbox to Kafka and materialises the topic
// back into audit_logs.
func (a *App) startAuditPipeline(ctx context.Context, auditStore audit.Store, runner tx.Runner) error {
	pg, ok := auditStore.(*auditpostgres.Store)
	if !ok {
		return errors.New("audit outbox requires the postgres audit store")
	}
	kcfg := a.cfg.Kafka
	if err := kafka.EnsureTopics(ctx, kcfg.Brokers, kafka.TopicSpec{
		Name:              kcfg.AuditTopic,
		Partitions:        3,
		ReplicationFactor: 1,
	}); err != nil {
		return err
	}

	prod, err := producer.New(kcfg.Brokers)
	if err != nil {
		return err
	}
	a.producer = prod
	a.relay = worker.NewRelay(pg, prod, runner, kcfg.AuditTopic,
		worker.WithInterval(kcfg.RelayInterval),
		worker.WithBatchSize(kcfg.RelayBatch),
		worker.WithLogger(a.logger),
	)

	router := auditconsumer.NewRouter(a.logger).
		Register(kcfg.AuditTopic, auditconsumer.NewEventHandler(pg, a.logger))
	cons, err := consumer.New(consumer.Config{
		Brokers: kcfg.Brokers,
		Group:   kcfg.ConsumerGroup,
		Topics:  router.Topics(),
	}, router, a.logger)
	if err != nil {
		return err
	}
	a.consumer = cons
	return nil
}

// Run blocks running the background workers until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if a.relay != nil {
		g.Go(func() error { return a.relay.Run(gctx) })
	}
	if a.consumer != nil {
		g.Go(func() error { return a.consumer.Run(gctx) })
	}
	if a.purgeable != nil {
		g.Go(func() error { return a.purgeRevocations(gctx) })
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) purgeRevocations(ctx context.Context) error {
	ticker := time.NewTicker(revocationPurgeTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := a.purgeable.PurgeExpired(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "failed to purge expired revocations", "error", err)
				continue
			}
			if n > 0 {
				a.logger.InfoContext(ctx, "purged expired revocations", "count", n)
			}
		}
	}
}

// Close drains the audit buffer before closing the connections it writes to.
func (a *App) Close() {
	if a.audit != nil {
		a.audit.Close()
	}
	if a.consumer != nil {
		a.consumer.Close()
	}
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close postgres", "error", err)
		}
	}
}
