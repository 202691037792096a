// Package bridge carries gateway commands between the desktop UI and the
// backend over an embedded, loopback-only NATS broker.
package bridge

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"go.uber.org/zap"
)

const (
	readyTimeout      = 5 * time.Second
	defaultMaxPayload = 1024 * 1024
)

// BrokerConfig holds the listener settings. Port -1 picks a free port.
type BrokerConfig struct {
	Host       string
	Port       int
	MaxPayload int32
}

// Broker wraps the embedded NATS server.
type Broker struct {
	server *server.Server
	logger *zap.Logger
}

func StartBroker(cfg BrokerConfig, logger *zap.Logger) (*Broker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = defaultMaxPayload
	}

	opts := &server.Options{
		ServerName:    "taskdesk-bridge",
		Host:          cfg.Host,
		Port:          cfg.Port,
		NoLog:         true,
		NoSigs:        true,
		MaxPayload:    cfg.MaxPayload,
		WriteDeadline: 10 * time.Second,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create bridge broker: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("bridge broker not ready after %s", readyTimeout)
	}

	broker := &Broker{server: ns, logger: logger.Named("bridge")}
	broker.logger.Info("bridge broker started", zap.String("url", broker.ClientURL()))
	return broker, nil
}

// ClientURL is the nats:// address clients connect to.
func (broker *Broker) ClientURL() string {
	return broker.server.ClientURL()
}

func (broker *Broker) NumClients() int {
	return broker.server.NumClients()
}

func (broker *Broker) Shutdown() {
	if broker == nil || broker.server == nil {
		return
	}
	broker.server.Shutdown()
	broker.server.WaitForShutdown()
	broker.logger.Info("bridge broker stopped")
}
