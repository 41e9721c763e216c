// Package finance provides read-only connectivity to the payment
// processor's settlement ledger (MS SQL Server). Payment status is
// mutated externally; this package is how the sync job reads back which
// references have settled.
package finance

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/solhaus/portal-api/internal/config"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	defaultHealthCheckTimeout = 5 * time.Second
)

// LedgerClient provides read-only access to the settlement ledger.
// It manages connection pooling with retry on transient startup failures.
type LedgerClient struct {
	db           *sql.DB
	config       *config.LedgerConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the ledger connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// NewLedgerClient creates a new settlement ledger client. Returns nil
// if the ledger is not enabled or not configured; callers must treat a
// nil client as "ledger disabled".
func NewLedgerClient(cfg *config.LedgerConfig, logger *zap.Logger) (*LedgerClient, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Settlement ledger connection disabled")
		return nil, nil
	}

	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Settlement ledger enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing settlement ledger connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open ledger connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = nextBackoff(backoff)
			}
			continue
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("Settlement ledger ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = nextBackoff(backoff)
			}
			continue
		}

		logger.Info("Settlement ledger connection established",
			zap.Int("attempts_taken", attempt),
		)

		return &LedgerClient{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to settlement ledger after %d attempts: %w", defaultMaxRetries, err)
}

func nextBackoff(backoff time.Duration) time.Duration {
	next := time.Duration(float64(backoff) * defaultBackoffFactor)
	if next > defaultMaxBackoff {
		return defaultMaxBackoff
	}
	return next
}

// buildConnectionString constructs a SQL Server connection string.
// URL format expected: host:port/database or host:port.
func buildConnectionString(cfg *config.LedgerConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433"
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the ledger connection
func (c *LedgerClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing settlement ledger connection")

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close ledger connection: %w", err)
	}
	return nil
}

// HealthCheck reports connection health and pool statistics
func (c *LedgerClient) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{Status: "disabled"}
	}

	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("Settlement ledger health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// SettledRefs returns which of the given payment references the ledger
// reports as settled. Unknown references are simply absent from the
// result; the ledger is the single source of truth for settlement.
func (c *LedgerClient) SettledRefs(ctx context.Context, refs []string) ([]string, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("settlement ledger client not initialized")
	}
	if len(refs) == 0 {
		return nil, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	placeholders := make([]string, len(refs))
	args := make([]interface{}, len(refs))
	for i, ref := range refs {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = ref
	}

	query := fmt.Sprintf(
		"SELECT reference FROM settlements WHERE status = 'settled' AND reference IN (%s)",
		strings.Join(placeholders, ", "),
	)

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("settlement query failed: %w", err)
	}
	defer rows.Close()

	var settled []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		settled = append(settled, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settlement rows error: %w", err)
	}

	c.logger.Debug("Settlement query completed",
		zap.Int("requested", len(refs)),
		zap.Int("settled", len(settled)),
		zap.Duration("duration", time.Since(start)),
	)

	return settled, nil
}
