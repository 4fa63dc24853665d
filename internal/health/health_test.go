package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/testutil"
)

func TestCheckerHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewChecker(NewDatabaseProbe(testutil.NewDB(t)), NewRedisProbe(client))
	report := c.Check(context.Background())

	assert.True(t, report.Healthy())
	assert.Equal(t, map[string]string{"database": StatusOK, "redis": StatusOK}, report.Checks)
}

func TestCheckerDegradedWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	report := NewChecker(NewDatabaseProbe(testutil.NewDB(t)), NewRedisProbe(client)).Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusOK, report.Checks["database"])
	assert.Contains(t, report.Checks["redis"], "failed to ping redis")
}
