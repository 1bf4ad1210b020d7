// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import "context"

// Thread is the per-unit view of the engine's command channel. Every remote
// interaction is one of these three operations: evaluate a command, evaluate
// a command and retrieve its results, or bind a whole value to a name.
type Thread interface {
	// Eval runs a command with no return value.
	Eval(ctx context.Context, command string) error

	// EvalReturning runs a command and retrieves exactly nargout results.
	// Result values are transport-decoded and loosely typed; see floatSlice
	// and friends in convert.go for the coercions the protocols apply.
	EvalReturning(ctx context.Context, command string, nargout int) ([]any, error)

	// SetVariable binds a flat numeric array to a name in the engine
	// namespace, replacing any existing binding.
	SetVariable(ctx context.Context, name string, value any) error
}

// Engine is the surface a hosted engine implements on the serving side. It
// is identical to Thread: the transports forward each operation verbatim.
type Engine = Thread

// Unit is a self-contained sequence of engine operations executed as one
// logical unit of work. The operations within a unit run sequentially, but
// the engine provides no transactional isolation between them.
type Unit func(ctx context.Context, t Thread) (any, error)

// Session is a connection to an engine. Dispatch blocks until the unit has
// run to completion against the engine and returns its result unchanged.
//
// A Session may be used from multiple goroutines; units from one session do
// not interleave with each other, but nothing orders them against other
// sessions sharing the same engine namespace.
type Session interface {
	Dispatch(ctx context.Context, unit Unit) (any, error)
	Close() error
}

// EngineServer hosts an Engine for remote sessions.
type EngineServer interface {
	// Serve accepts sessions and dispatches their operations to the hosted
	// engine, blocking until the server is closed.
	Serve(ctx context.Context) error

	// Close stops the server.
	Close() error

	// Addr returns the server's listen address.
	Addr() string
}

// DialOption configures sessions.
type DialOption func(*dialOptions)

type dialOptions struct {
	codec       Codec
	transport   string // "wire", "grpc", "json"
	requestOpts []Option
}

// WithCodec sets a custom codec
func WithCodec(c Codec) DialOption {
	return func(o *dialOptions) { o.codec = c }
}

// WithTransport explicitly sets the transport type
func WithTransport(t string) DialOption {
	return func(o *dialOptions) { o.transport = t }
}

// WithRequestOptions attaches per-request HTTP options (headers, query
// params) to every call a json-transport session makes. Other transports
// ignore them.
func WithRequestOptions(opts ...Option) DialOption {
	return func(o *dialOptions) { o.requestOpts = append(o.requestOpts, opts...) }
}

// ServeOption configures engine servers.
type ServeOption func(*serveOptions)

type serveOptions struct {
	codec     Codec
	transport string
}

// WithServerCodec sets a custom codec for the server
func WithServerCodec(c Codec) ServeOption {
	return func(o *serveOptions) { o.codec = c }
}

// WithServerTransport explicitly sets the transport type for the server
func WithServerTransport(t string) ServeOption {
	return func(o *serveOptions) { o.transport = t }
}
