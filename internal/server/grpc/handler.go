package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/account"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	email, errs := account.ValidateLogin(fields["email"].GetStringValue(), fields["password"].GetStringValue())
	if len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	sess, err := s.account.Authenticate(ctx, email, fields["password"].GetStringValue())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInactiveAccount):
			return nil, status.Error(codes.Unauthenticated, err.Error())
		default:
			s.logger.Error(ctx, "error logging in", "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	return toStruct(sess)
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	profile := user.Public()
	if url, err := s.account.AvatarURL(ctx, user); err == nil {
		profile.Picture = url
	} else {
		s.logger.Warn(ctx, "error resolving avatar url", "user_id", user.ID, "error", err)
	}

	return toStruct(profile)
}

func (s *GRPCServer) GetBalance(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"balance": s.account.GetBalanceView(user)})
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in users.UpdateInput
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed update")
	}
	if errs := account.ValidateUpdate(&in); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	profile, err := s.account.UpdateProfile(ctx, user.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, status.Error(codes.NotFound, "user not found")
		case errors.Is(err, common.ErrDuplicateEmail):
			return nil, status.Error(codes.AlreadyExists, err.Error())
		case errors.Is(err, common.ErrValidation):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		default:
			s.logger.Error(ctx, "error updating profile", "user_id", user.ID, "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	return toStruct(profile)
}

func invalidArgument(errs []account.FieldError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return status.Error(codes.InvalidArgument, "validation failed: "+strings.Join(msgs, "; "))
}

// toStruct converts a JSON-tagged value into a Struct message.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
