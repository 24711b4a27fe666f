package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"vectorlog/internal/codec"
	"vectorlog/internal/vlog"
)

// entryToProto converts an entry to its codec envelope inside a Struct.
func entryToProto(e vlog.Entry) (*structpb.Struct, error) {
	raw, err := codec.EncodeEntry(e)
	if err != nil {
		return nil, err
	}
	pb := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, pb); err != nil {
		return nil, fmt.Errorf("failed to convert entry: %w", err)
	}
	return pb, nil
}

// protoToEntry converts an entry envelope Struct back to an entry.
func protoToEntry(pb *structpb.Struct) (vlog.Entry, error) {
	raw, err := protojson.Marshal(pb)
	if err != nil {
		return vlog.Entry{}, fmt.Errorf("failed to convert entry: %w", err)
	}
	return codec.DecodeEntry(raw)
}

// entriesToProto wraps a log as {entries: [...]}.
func entriesToProto(entries []vlog.Entry) (*structpb.Struct, error) {
	raw, err := codec.EncodeLog(entries)
	if err != nil {
		return nil, err
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{"entries": raw})
	if err != nil {
		return nil, err
	}
	pb := &structpb.Struct{}
	if err := protojson.Unmarshal(wrapped, pb); err != nil {
		return nil, fmt.Errorf("failed to convert log: %w", err)
	}
	return pb, nil
}

// protoToEntries unwraps {entries: [...]}.
func protoToEntries(pb *structpb.Struct) ([]vlog.Entry, error) {
	list := pb.GetFields()["entries"].GetListValue()
	if list == nil {
		return nil, &codec.DecodeError{What: "log", Err: errors.New("missing entries")}
	}
	raw, err := protojson.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to convert log: %w", err)
	}
	return codec.DecodeLog(raw)
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, vlog.ErrNoParticipant), errors.Is(err, codec.ErrDecode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, vlog.ErrSyncNotImplemented):
		return status.Error(codes.Unimplemented, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStatus maps gRPC status codes back onto domain errors where one exists.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() == codes.InvalidArgument && st.Message() == vlog.ErrNoParticipant.Error() {
		return vlog.ErrNoParticipant
	}
	return err
}
