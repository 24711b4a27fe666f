package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"vectorlog/internal/config"
	"vectorlog/internal/storage"
	"vectorlog/internal/vlog"
)

// Node serves one participant's causal log over gRPC.
type Node struct {
	cfg        *config.Config
	server     *Server
	grpcServer *grpc.Server
	logger     zerolog.Logger
}

// NewNode loads the configured log from the store, creating and saving a
// fresh one when none exists yet.
func NewNode(cfg *config.Config, store storage.Store, logger zerolog.Logger) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger = logger.With().Str("node", cfg.ParticipantID).Logger()

	l, err := store.Load(cfg.LogName)
	if errors.Is(err, storage.ErrNotFound) {
		l = vlog.New()
		if err := store.Save(cfg.LogName, l); err != nil {
			return nil, fmt.Errorf("failed to create log %s: %w", cfg.LogName, err)
		}
		logger.Info().Str("log", cfg.LogName).Msg("created new log")
	} else if err != nil {
		return nil, fmt.Errorf("failed to load log %s: %w", cfg.LogName, err)
	}

	n := &Node{
		cfg:        cfg,
		server:     NewServer(l, store, cfg.LogName, cfg.ParticipantID, logger),
		grpcServer: grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger))),
		logger:     logger,
	}
	RegisterCausalLogServer(n.grpcServer, n.server)
	return n, nil
}

// Start listens on the configured address and serves until Stop.
func (n *Node) Start() error {
	lis, err := net.Listen("tcp", n.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.cfg.ListenAddr, err)
	}
	return n.Serve(lis)
}

// Serve serves on an existing listener until Stop.
func (n *Node) Serve(lis net.Listener) error {
	n.logger.Info().Str("addr", lis.Addr().String()).Msg("starting node")

	if err := n.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the node.
func (n *Node) Stop() {
	n.logger.Info().Msg("stopping node")
	n.grpcServer.GracefulStop()
}

func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		ev := logger.Debug()
		if err != nil {
			ev = logger.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Dur("elapsed", time.Since(start)).Msg("rpc")
		return resp, err
	}
}
