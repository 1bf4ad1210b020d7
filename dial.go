// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// Dial connects to an engine server using the default transport (wire).
func Dial(ctx context.Context, addr string, opts ...DialOption) (Session, error) {
	o := &dialOptions{
		transport: DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	dial, _, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s", o.transport)
	}
	return dial(ctx, addr, o)
}

// Listen creates an engine server for engine using the default transport
// (wire).
func Listen(addr string, engine Engine, opts ...ServeOption) (EngineServer, error) {
	o := &serveOptions{
		transport: DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	_, listen, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s", o.transport)
	}
	return listen(addr, engine, o)
}

// dialWire creates a wire-transport session
func dialWire(ctx context.Context, addr string, o *dialOptions) (Session, error) {
	conn, err := DialWire(ctx, addr)
	if err != nil {
		return nil, err
	}
	codec := o.codec
	if codec == nil {
		codec = defaultCodec
	}
	return &wireSession{
		conn:  conn,
		codec: codec,
	}, nil
}

// listenWire creates a wire-transport engine server
func listenWire(addr string, engine Engine, o *serveOptions) (EngineServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &wireEngineServer{
		server: NewWireServer(listener, engine, o.codec),
	}, nil
}

// wireSession implements Session and Thread over a WireConn. The mutex keeps
// the operations of one unit from interleaving with another unit dispatched
// on the same session; it deliberately does not serialize anything across
// sessions, so the shared-namespace caveats in the package documentation
// still apply.
type wireSession struct {
	conn  *WireConn
	codec Codec
	mu    sync.Mutex
}

func (s *wireSession) Dispatch(ctx context.Context, unit Unit) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return unit(ctx, s)
}

func (s *wireSession) Eval(ctx context.Context, command string) error {
	payload, err := s.codec.Encode(&evalRequest{Command: command})
	if err != nil {
		return fmt.Errorf("encode eval: %w", err)
	}
	_, err = s.conn.roundTrip(ctx, opEval, payload)
	return err
}

func (s *wireSession) EvalReturning(ctx context.Context, command string, nargout int) ([]any, error) {
	payload, err := s.codec.Encode(&evalReturningRequest{Command: command, Nargout: nargout})
	if err != nil {
		return nil, fmt.Errorf("encode eval: %w", err)
	}
	resp, err := s.conn.roundTrip(ctx, opEvalReturning, payload)
	if err != nil {
		return nil, err
	}
	var reply evalReturningReply
	if err := s.codec.Decode(resp, &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if len(reply.Results) != nargout {
		return nil, fmt.Errorf("%w: expected %d results, got %d",
			ErrMalformedResult, nargout, len(reply.Results))
	}
	return reply.Results, nil
}

func (s *wireSession) SetVariable(ctx context.Context, name string, value any) error {
	payload, err := s.codec.Encode(&setVariableRequest{Name: name, Value: value})
	if err != nil {
		return fmt.Errorf("encode set: %w", err)
	}
	_, err = s.conn.roundTrip(ctx, opSetVariable, payload)
	return err
}

func (s *wireSession) Close() error {
	return s.conn.Close()
}

// wireEngineServer implements EngineServer using the wire transport
type wireEngineServer struct {
	server *WireServer
}

func (s *wireEngineServer) Serve(ctx context.Context) error {
	return s.server.Serve(ctx)
}

func (s *wireEngineServer) Close() error {
	return s.server.Close()
}

func (s *wireEngineServer) Addr() string {
	return s.server.Addr().String()
}
