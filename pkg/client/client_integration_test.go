//go:build integration

package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/voucher-client/internal/testutil"
	"github.com/Sternrassler/voucher-client/pkg/cache"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_RedisBackedRedeem(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockGift()
	defer mock.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.Store = cache.NewRedisStore(redisClient)
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	t.Log("Request 1: upstream")
	resp1 := client.Redeem(ctx, testPhone, testVoucher)
	if !resp1.Success() {
		t.Fatalf("Request 1 status = %+v, want success", resp1.Status)
	}

	t.Log("Request 2: cache")
	resp2 := client.Redeem(ctx, testPhone, testVoucher)
	if string(resp2.Raw()) != testutil.SuccessBody {
		t.Errorf("Request 2 body = %s, want cached upstream body", resp2.Raw())
	}
	if resp2.HTTPStatus != http.StatusOK {
		t.Errorf("Request 2 HTTPStatus = %d, want %d", resp2.HTTPStatus, http.StatusOK)
	}

	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("requests made = %d, want 1", got)
	}

	ttl, err := redisClient.TTL(ctx, cache.RedisKeyPrefix+testPhone+":"+testVoucher).Result()
	if err != nil {
		t.Fatalf("TTL lookup failed: %v", err)
	}
	if ttl <= cache.DefaultSuccessTTL-time.Minute || ttl > cache.DefaultSuccessTTL {
		t.Errorf("Redis TTL = %v, want about %v", ttl, cache.DefaultSuccessTTL)
	}
}

func TestIntegration_RedisBackedErrorTTL(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockGift()
	defer mock.Close()
	mock.SetRedeemResponse(testVoucher, testutil.NewUpstreamErrorResponse(http.StatusBadRequest, "VOUCHER_EXPIRED", "expired"))

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.Store = cache.NewRedisStore(redisClient)
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	resp := client.Redeem(ctx, testPhone, testVoucher)
	if resp.Status.Code != "VOUCHER_EXPIRED" {
		t.Fatalf("Status.Code = %q, want VOUCHER_EXPIRED", resp.Status.Code)
	}

	ttl, err := redisClient.TTL(ctx, cache.RedisKeyPrefix+testPhone+":"+testVoucher).Result()
	if err != nil {
		t.Fatalf("TTL lookup failed: %v", err)
	}
	if ttl <= 0 || ttl > cache.DefaultErrorTTL {
		t.Errorf("Redis TTL = %v, want at most %v", ttl, cache.DefaultErrorTTL)
	}
}
