package node

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"vectorlog/internal/storage"
	"vectorlog/internal/vlog"
)

// Server implements the CausalLog gRPC service over one stored log.
type Server struct {
	mu      sync.Mutex // Serializes append + save
	log     *vlog.Log
	store   storage.Store
	logName string
	nodeID  string
	logger  zerolog.Logger
}

// NewServer creates a new gRPC server instance.
func NewServer(l *vlog.Log, store storage.Store, logName, nodeID string, logger zerolog.Logger) *Server {
	return &Server{
		log:     l,
		store:   store,
		logName: logName,
		nodeID:  nodeID,
		logger:  logger,
	}
}

// Append handles Append requests. The entry is persisted before it becomes
// visible; if saving fails the log is left unchanged.
func (s *Server) Append(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	participant := fields["participant"].GetStringValue()
	content := fields["content"].GetStringValue()
	requestID := fields["request_id"].GetStringValue()

	s.logger.Debug().
		Str("participant", participant).
		Str("request_id", requestID).
		Msg("append request")

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := vlog.FromEntries(s.log.Entries())
	if err != nil {
		return nil, toStatus(err)
	}
	entry, err := next.Append(participant, content)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.store.Save(s.logName, next); err != nil {
		s.logger.Error().Err(err).Str("log", s.logName).Msg("failed to persist append")
		return nil, toStatus(err)
	}
	s.log = next

	s.logger.Info().
		Str("node", s.nodeID).
		Str("writer", entry.Writer).
		Stringer("clock", entry.Clock).
		Int("entries", next.Len()).
		Msg("appended entry")

	return entryToProto(entry)
}

// List handles List requests.
func (s *Server) List(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	l := s.log
	s.mu.Unlock()

	resp, err := entriesToProto(l.Entries())
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// Sync handles Sync requests. No merge protocol is defined, so it always
// reports Unimplemented.
func (s *Server) Sync(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from := req.GetFields()["from_id"].GetStringValue()
	s.logger.Warn().Str("from", from).Msg("sync requested but not implemented")

	s.mu.Lock()
	l := s.log
	s.mu.Unlock()
	return nil, toStatus(l.Sync(ctx, nil))
}
