package surrealdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bobmcallan/gripinvest/internal/common"
)

var (
	surrealOnce    sync.Once
	surrealAddress string
	surrealError   error
)

// startSurrealDB starts one SurrealDB container per test process and returns
// its WebSocket RPC address.
func startSurrealDB(t *testing.T) string {
	t.Helper()

	if os.Getenv("GRIPINVEST_SKIP_CONTAINERS") != "" {
		t.Skip("container tests disabled (GRIPINVEST_SKIP_CONTAINERS is set)")
	}
	if testing.Short() {
		t.Skip("container tests skipped in -short mode")
	}

	surrealOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			surrealError = fmt.Errorf("start SurrealDB container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB host: %w", err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, "8000/tcp")
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB port: %w", err)
			return
		}

		surrealAddress = fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port())
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealAddress
}

// testConfig points a config at the shared container using a unique database
// per test for isolation.
func testConfig(t *testing.T) *common.Config {
	t.Helper()
	address := startSurrealDB(t)

	// SurrealDB rejects "/" in database names, which subtests produce.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return &common.Config{
		Environment: "test",
		Storage: common.StorageConfig{
			Backend:   "surrealdb",
			Address:   address,
			Namespace: "gripinvest_test",
			Database:  fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000),
			Username:  "root",
			Password:  "root",
		},
	}
}

// testManager returns a connected manager closed at test cleanup.
func testManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(common.NewSilentLogger(), testConfig(t))
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}
