package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/terraincognita07/taskdesk/internal/gateway"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

const bridgeClient = "bridge"

// Executor is the part of the gateway the bridge needs.
type Executor interface {
	Execute(ctx context.Context, command gateway.Command) gateway.Envelope
	Reject(command gateway.Command, err error) gateway.Envelope
	Operations() []string
}

// Server answers gateway requests arriving on the broker.
type Server struct {
	conn          *nats.Conn
	executor      Executor
	logger        *zap.Logger
	subscriptions []*nats.Subscription
}

func NewServer(url string, executor Executor, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.Name("taskdesk-backend"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect bridge server: %w", err)
	}
	return &Server{
		conn:     conn,
		executor: executor,
		logger:   logger.Named("bridge"),
	}, nil
}

// Start subscribes one subject per operation in a shared queue group.
func (srv *Server) Start() error {
	for _, operation := range srv.executor.Operations() {
		operation := operation
		subscription, err := srv.conn.QueueSubscribe(Subject(operation), QueueGroup, func(msg *nats.Msg) {
			srv.handle(operation, msg)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", operation, err)
		}
		srv.subscriptions = append(srv.subscriptions, subscription)
	}
	if err := srv.conn.Flush(); err != nil {
		return fmt.Errorf("flush bridge subscriptions: %w", err)
	}
	srv.logger.Info("bridge server listening", zap.Int("operations", len(srv.subscriptions)))
	return nil
}

func (srv *Server) handle(operation string, msg *nats.Msg) {
	requestID := ""
	if msg.Header != nil {
		requestID = strings.TrimSpace(msg.Header.Get(RequestIDHeader))
	}

	command := gateway.Command{Operation: operation, Client: bridgeClient}
	var envelope gateway.Envelope

	var request Request
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		envelope = srv.executor.Reject(command, services.ErrMalformedArguments)
	} else {
		command.Token = request.Token
		command.Language = request.Language
		command.Args = request.Args
		envelope = srv.executor.Execute(context.Background(), command)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		srv.logger.Error("encode bridge reply", zap.String("operation", operation), zap.Error(err))
		return
	}

	reply := nats.NewMsg(msg.Reply)
	reply.Data = body
	if requestID != "" {
		reply.Header.Set(RequestIDHeader, requestID)
	}
	if err := msg.RespondMsg(reply); err != nil {
		srv.logger.Warn("send bridge reply",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}

// Close drains pending requests and disconnects.
func (srv *Server) Close() error {
	if srv.conn == nil || srv.conn.IsClosed() {
		return nil
	}
	return srv.conn.Drain()
}
