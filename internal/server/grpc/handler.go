package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/proto/ledgerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func message(fields map[string]any) (*structpb.Struct, error) {
	m, err := ledgerpb.NewMessage(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return m, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	salt, err := ledgerpb.Bytes(req, ledgerpb.KeySalt)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	verifier, err := ledgerpb.Bytes(req, ledgerpb.KeyVerifier)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	username := ledgerpb.String(req, ledgerpb.KeyUsername)
	user, err := s.users.Register(ctx, username, salt, verifier)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", username)
	return message(map[string]any{ledgerpb.KeyID: user.ID})
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	salt, err := s.users.GetSalt(ctx, ledgerpb.String(req, ledgerpb.KeyUsername))
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]any{ledgerpb.KeySalt: salt})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	verifier, err := ledgerpb.Bytes(req, ledgerpb.KeyVerifier)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	tokens, err := s.users.Login(ctx, ledgerpb.String(req, ledgerpb.KeyUsername), verifier)
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]any{
		ledgerpb.KeyAccessToken:  tokens.AccessToken,
		ledgerpb.KeyRefreshToken: tokens.RefreshToken,
	})
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokens, err := s.users.RefreshToken(ctx, ledgerpb.String(req, ledgerpb.KeyRefreshToken))
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]any{
		ledgerpb.KeyAccessToken:  tokens.AccessToken,
		ledgerpb.KeyRefreshToken: tokens.RefreshToken,
	})
}

func pathFrom(req *structpb.Struct) docstore.Path {
	return docstore.Path{
		Owner:      ledgerpb.String(req, ledgerpb.KeyOwner),
		Collection: ledgerpb.String(req, ledgerpb.KeyCollection),
		ID:         ledgerpb.String(req, ledgerpb.KeyID),
	}
}

func (s *GRPCServer) GetDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc, err := s.documents.Get(ctx, userIDFromContext(ctx), pathFrom(req))
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := docstore.ToStruct(doc)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (s *GRPCServer) SetMergeDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p := pathFrom(req)
	ack, err := s.documents.SetMerge(ctx, userIDFromContext(ctx), p, docstore.FromStruct(ledgerpb.Struct(req, ledgerpb.KeyFields)))
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]any{
		ledgerpb.KeyPath:      ack.Path.String(),
		ledgerpb.KeyUpdatedAt: ack.UpdatedAt,
		ledgerpb.KeyChanged:   ack.Changed,
	})
}

func (s *GRPCServer) ScanCollection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	docs, err := s.documents.Scan(ctx, userIDFromContext(ctx),
		ledgerpb.String(req, ledgerpb.KeyOwner), ledgerpb.String(req, ledgerpb.KeyCollection))
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]*structpb.Struct, 0, len(docs))
	for _, d := range docs {
		st, err := docstore.ToStruct(d)
		if err != nil {
			s.logger.Warn(ctx, "skipping document that cannot be sent", "id", d.ID(), "error", err)
			continue
		}
		list = append(list, st)
	}
	return message(map[string]any{ledgerpb.KeyDocuments: list})
}
