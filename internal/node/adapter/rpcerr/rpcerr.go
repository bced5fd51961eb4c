// Package rpcerr carries node errors across peer RPCs as a status code plus a reason trailer.
package rpcerr

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/internal/rpc/peerv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type mapping struct {
	err    error
	reason string
	code   codes.Code
}

// Checked in order; the first match wins.
var mappings = []mapping{
	{port.ErrRingEmpty, peerv1.ReasonRingEmpty, codes.FailedPrecondition},
	{port.ErrNotReplica, peerv1.ReasonNotReplica, codes.FailedPrecondition},
	{port.ErrQuorumNotMet, peerv1.ReasonQuorumNotMet, codes.Unavailable},
	{port.ErrMalformedClock, peerv1.ReasonMalformedClock, codes.DataLoss},
	{port.ErrObjectNotFound, peerv1.ReasonNotFound, codes.NotFound},
	{domain.ErrInvalidKey, peerv1.ReasonInvalidKey, codes.InvalidArgument},
	{domain.ErrChecksumMismatch, peerv1.ReasonChecksumMismatch, codes.DataLoss},
	{domain.ErrObjectTooLarge, peerv1.ReasonTooLarge, codes.ResourceExhausted},
	{port.ErrConsistencyConflict, peerv1.ReasonConflict, codes.Aborted},
	{port.ErrStorageIO, peerv1.ReasonStorageIO, codes.Internal},
}

// ToStatus converts a service error into a gRPC status and attaches the reason trailer.
func ToStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			_ = grpc.SetTrailer(ctx, metadata.Pairs(peerv1.ReasonKey, m.reason))
			return status.Error(m.code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// FromStatus restores the service error named by the reason trailer. Errors without a reason
// are transport failures and are returned normalized.
func FromStatus(ctx context.Context, err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	if reasons := trailer.Get(peerv1.ReasonKey); len(reasons) > 0 {
		for _, m := range mappings {
			if m.reason == reasons[0] {
				return fmt.Errorf("%w: %s", m.err, status.Convert(err).Message())
			}
		}
	}
	return Normalize(ctx, err)
}

// Normalize folds the different shapes of cancellation into context.Canceled.
func Normalize(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return context.Canceled
	}
	if errors.Is(err, io.EOF) && ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	return err
}

// IsTransportFailure reports whether err says something about the peer's health rather than
// about the request. Only these count against a circuit breaker.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return true
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Unknown, codes.Unimplemented:
		return true
	default:
		return false
	}
}
