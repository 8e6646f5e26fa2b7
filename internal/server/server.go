// Package server runs the HTTP API for unpublished content access tokens.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mcuadros/go-defaults"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/metrics"
)

type Options struct {
	DBFile string `mapstructure:"db-file" default:"unpublished.db"`
	// DBConnection is a postgres connection string. When set DBFile is ignored.
	DBConnection string `mapstructure:"db-connection"`

	Listen        string `mapstructure:"listen" default:":8080" validate:"required"`
	MetricsListen string `mapstructure:"metrics-listen" default:":9090" validate:"required"`

	// TokenLifetime is the lifetime of tokens created without an explicit
	// lifetime or deadline.
	TokenLifetime models.Lifetime `mapstructure:"token-lifetime"`
	// HashKey is the query parameter holding the token value on content
	// access requests.
	HashKey string `mapstructure:"hash-key" default:"auHash" validate:"required,alphanum"`

	CleanupExpiredTokens bool          `mapstructure:"cleanup-expired-tokens" default:"true"`
	CleanupInterval      time.Duration `mapstructure:"cleanup-interval" default:"1h" validate:"required_if=CleanupExpiredTokens true,gte=0"`
	CleanupGracePeriod   time.Duration `mapstructure:"cleanup-grace-period" validate:"gte=0"`

	RequestTimeout time.Duration `mapstructure:"request-timeout" default:"1m" validate:"gt=0"`
}

// DefaultTokenLifetime is the token lifetime of DefaultOptions.
const DefaultTokenLifetime = models.Lifetime(48 * time.Hour)

// DefaultOptions returns Options with every default applied. A zero
// TokenLifetime is models.NeverExpire, so it is seeded here instead of by a
// default tag.
func DefaultOptions() Options {
	options := Options{TokenLifetime: DefaultTokenLifetime}
	defaults.SetDefaults(&options)
	return options
}

var validate = validator.New()

func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	return nil
}

type Server struct {
	options         Options
	db              *gorm.DB
	metricsRegistry *prometheus.Registry
	routines        []routine
	Addrs           Addrs
}

type Addrs struct {
	HTTP    net.Addr
	Metrics net.Addr
}

// New creates a Server and opens its database.
func New(options Options) (*Server, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	db, err := OpenDB(options)
	if err != nil {
		return nil, err
	}

	return newServer(options, db), nil
}

// OpenDB opens and migrates the database named by options. Postgres is used
// when DBConnection is set, otherwise the sqlite file at DBFile.
func OpenDB(options Options) (*gorm.DB, error) {
	driver, err := newDBDriver(options)
	if err != nil {
		return nil, err
	}

	db, err := data.NewDB(driver)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return db, nil
}

func newServer(options Options, db *gorm.DB) *Server {
	return &Server{
		options:         options,
		db:              db,
		metricsRegistry: setupMetrics(db),
	}
}

func newDBDriver(options Options) (gorm.Dialector, error) {
	if options.DBConnection != "" {
		return data.NewPostgresDriver(options.DBConnection)
	}

	return data.NewSQLiteDriver(options.DBFile)
}

// DB returns the database of the server.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Run starts the listeners and background jobs of the server, and blocks
// until ctx is cancelled or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	// nolint: errcheck // if logs won't sync there is no way to report this error
	defer logging.L.Sync()

	if err := s.listen(); err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)

	if s.options.CleanupExpiredTokens {
		group.Go(jobWrapper(ctx, s.db, deleteExpiredTokens(s.options.CleanupGracePeriod), s.options.CleanupInterval))
	}

	logging.S.Infow("starting server", "api", s.Addrs.HTTP.String(), "metrics", s.Addrs.Metrics.String())

	for i := range s.routines {
		group.Go(s.routines[i].run)
	}

	<-ctx.Done()
	for _, r := range s.routines {
		r.stop()
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (s *Server) listen() error {
	metricsServer := &http.Server{
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Addr:              s.options.MetricsListen,
		Handler:           metrics.NewHandler(s.metricsRegistry),
	}

	var err error
	s.Addrs.Metrics, err = s.setupServer(metricsServer)
	if err != nil {
		return err
	}

	apiServer := &http.Server{
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Addr:              s.options.Listen,
		Handler:           s.GenerateRoutes(s.metricsRegistry),
	}

	s.Addrs.HTTP, err = s.setupServer(apiServer)
	if err != nil {
		return err
	}

	return nil
}

func (s *Server) setupServer(server *http.Server) (net.Addr, error) {
	if server.Addr == "" {
		server.Addr = "127.0.0.1:"
	}

	l, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, err
	}

	logging.Infof("listening on %s", l.Addr().String())

	s.routines = append(s.routines, routine{
		run: func() error {
			if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
		stop: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logging.Warnf("shutdown %s: %v", server.Addr, err)
			}
		},
	})

	return l.Addr(), nil
}

type routine struct {
	run  func() error
	stop func()
}
