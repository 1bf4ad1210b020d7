//go:build grpc

// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(TransportGRPC, dialGRPC, listenGRPC)
}

func dialGRPC(ctx context.Context, addr string, o *dialOptions) (Session, error) {
	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &grpcSession{conn: conn}, nil
}

func listenGRPC(addr string, engine Engine, o *serveOptions) (EngineServer, error) {
	return nil, fmt.Errorf("grpc engine server not yet implemented")
}

// grpcSession implements Session over a gRPC engine gateway exporting the
// three engine operations under the matlabcontrol.Engine service.
type grpcSession struct {
	conn *grpc.ClientConn
	mu   sync.Mutex
}

func (s *grpcSession) Dispatch(ctx context.Context, unit Unit) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return unit(ctx, s)
}

func (s *grpcSession) Eval(ctx context.Context, command string) error {
	var reply struct{}
	return s.conn.Invoke(ctx, "/matlabcontrol.Engine/Eval", &evalRequest{Command: command}, &reply)
}

func (s *grpcSession) EvalReturning(ctx context.Context, command string, nargout int) ([]any, error) {
	var reply evalReturningReply
	err := s.conn.Invoke(ctx, "/matlabcontrol.Engine/EvalReturning",
		&evalReturningRequest{Command: command, Nargout: nargout}, &reply)
	if err != nil {
		return nil, err
	}
	if len(reply.Results) != nargout {
		return nil, fmt.Errorf("%w: expected %d results, got %d",
			ErrMalformedResult, nargout, len(reply.Results))
	}
	return reply.Results, nil
}

func (s *grpcSession) SetVariable(ctx context.Context, name string, value any) error {
	var reply struct{}
	return s.conn.Invoke(ctx, "/matlabcontrol.Engine/SetVariable",
		&setVariableRequest{Name: name, Value: value}, &reply)
}

func (s *grpcSession) Close() error {
	return s.conn.Close()
}
