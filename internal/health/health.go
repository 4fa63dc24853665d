package health

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

const defaultTimeout = 3 * time.Second

// Probe checks one dependency.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

type DatabaseProbe struct {
	db *gorm.DB
}

func NewDatabaseProbe(db *gorm.DB) DatabaseProbe {
	return DatabaseProbe{db: db}
}

func (p DatabaseProbe) Name() string { return "database" }

func (p DatabaseProbe) Check(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get a database connection: %v", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	return nil
}

type RedisProbe struct {
	client *redis.Client
}

func NewRedisProbe(client *redis.Client) RedisProbe {
	return RedisProbe{client: client}
}

func (p RedisProbe) Name() string { return "redis" }

func (p RedisProbe) Check(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %v", err)
	}
	return nil
}

type Report struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func (r Report) Healthy() bool { return r.Status == StatusOK }

// Checker runs every probe with a shared timeout.
type Checker struct {
	probes  []Probe
	timeout time.Duration
}

func NewChecker(probes ...Probe) *Checker {
	return &Checker{probes: probes, timeout: defaultTimeout}
}

func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := Report{
		Status:    StatusOK,
		Checks:    make(map[string]string, len(c.probes)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, p := range c.probes {
		if err := p.Check(ctx); err != nil {
			report.Status = StatusDegraded
			report.Checks[p.Name()] = err.Error()
			continue
		}
		report.Checks[p.Name()] = StatusOK
	}

	return report
}
