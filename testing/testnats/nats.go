package testnats

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	clientPort  = "4222/tcp"
	monitorPort = "8222/tcp"
)

var (
	shared   *NATSContainer
	sharedMu sync.Mutex
)

// NATSContainer is a NATS server with the monitoring endpoint enabled.
type NATSContainer struct {
	Container testcontainers.Container
	URL       string
}

// SetupSharedNATS starts a NATS server on first use and hands the same one to
// every later caller in the test binary. Callers must not run in parallel.
func SetupSharedNATS(t *testing.T) *NATSContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			Cmd:          []string{"-m", "8222"},
			ExposedPorts: []string{clientPort, monitorPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(clientPort),
				wait.ForHTTP("/healthz").WithPort(monitorPort),
			).WithDeadline(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start nats container")

	endpoint, err := container.PortEndpoint(ctx, clientPort, "nats")
	require.NoError(t, err)

	shared = &NATSContainer{Container: container, URL: endpoint}
	return shared
}

// Cleanup terminates the server; the next SetupSharedNATS starts a fresh one.
func (nc *NATSContainer) Cleanup(t *testing.T) {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if err := nc.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate nats container: %s", err)
	}
	shared = nil
}

func (nc *NATSContainer) Connect(t *testing.T) *nats.Conn {
	t.Helper()

	conn, err := nats.Connect(nc.URL, nats.Name(fmt.Sprintf("test-%s", t.Name())))
	require.NoError(t, err)

	t.Cleanup(conn.Close)
	return conn
}

// Subscribe opens a synchronous subscription and flushes it so a publish made
// right after the call is not missed.
func (nc *NATSContainer) Subscribe(t *testing.T, subject string) *nats.Subscription {
	t.Helper()

	conn := nc.Connect(t)
	sub, err := conn.SubscribeSync(subject)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())
	return sub
}
