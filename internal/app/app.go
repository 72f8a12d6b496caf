package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/cinepass/seat-booking/internal/notifier"
	"github.com/cinepass/seat-booking/internal/pricing"
	"github.com/cinepass/seat-booking/internal/repository"
	"github.com/cinepass/seat-booking/internal/seatlock"
	appvalidator "github.com/cinepass/seat-booking/internal/validator"
	"github.com/cinepass/seat-booking/internal/vcs"
	"github.com/cinepass/seat-booking/internal/vnpay"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

// RedisClient is the slice of the Redis API the handlers use directly, kept
// narrow so it can be mocked in tests. Locks and sessions get the full
// client at construction time.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          RedisClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	pricer         *pricing.Engine

	showRepo        domain.ShowRepository
	catalogRepo     domain.CatalogRepository
	reservationRepo domain.ReservationRepository
	paymentRepo     domain.PaymentRepository
	ticketRepo      domain.TicketRepository

	locker   domain.SeatLocker
	gateway  domain.PaymentGateway
	notifier domain.SeatNotifier
}

type Config struct {
	Port int
	Env  string

	OtelCollectorUrl string

	DB struct {
		Dsn          string
		MaxOpenConns int
		MaxIdleTime  time.Duration
	}
	Redis struct {
		Url          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}
	Kafka struct {
		Brokers string
		Topic   string
	}
	VNPay struct {
		TmnCode    string
		HashSecret string
		BaseURL    string
		ReturnURL  string
	}
	Sweep struct {
		Interval time.Duration
	}
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.Dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.Url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Kafka.Brokers, "kafka-brokers", "", "Kafka broker list (comma separated, empty disables seat events)")
	flag.StringVar(&cfg.Kafka.Topic, "kafka-topic", "seat-events", "Kafka topic for seat change events")

	flag.StringVar(&cfg.VNPay.TmnCode, "vnpay-tmn-code", "", "VNPay terminal code")
	flag.StringVar(&cfg.VNPay.HashSecret, "vnpay-hash-secret", "", "VNPay hash secret")
	flag.StringVar(&cfg.VNPay.BaseURL, "vnpay-base-url", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", "VNPay payment URL")
	flag.StringVar(&cfg.VNPay.ReturnURL, "vnpay-return-url", "", "URL VNPay redirects customers back to")

	flag.DurationVar(&cfg.Sweep.Interval, "sweep-interval", time.Minute, "Expired reservation sweep interval")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	err = runMigrations(cfg, logger)
	if err != nil {
		return err
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var seatNotifier domain.SeatNotifier = notifier.NoopNotifier{}
	if cfg.Kafka.Brokers != "" {
		kafkaNotifier := notifier.NewKafkaNotifier(splitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		seatNotifier = kafkaNotifier
	}

	app := &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		sessionManager: NewSessionManager(redisClient),
		pricer:         pricing.NewEngine(pricing.DefaultConfig()),

		showRepo:        repository.NewPostgresShowRepository(db),
		catalogRepo:     repository.NewPostgresCatalogRepository(db),
		reservationRepo: repository.NewPostgresReservationRepository(db),
		paymentRepo:     repository.NewPostgresPaymentRepository(db),
		ticketRepo:      repository.NewPostgresTicketRepository(db),

		locker: seatlock.NewRedisLocker(redisClient),
		gateway: vnpay.New(vnpay.Config{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			BaseURL:    cfg.VNPay.BaseURL,
		}),
		notifier: seatNotifier,
	}

	return app.run()
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := redisotel.InstrumentTracing(rdb)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	stopSweep, err := app.startExpirySweep()
	if err != nil {
		return err
	}
	defer stopSweep()

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
