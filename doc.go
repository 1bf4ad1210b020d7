// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package matlabcontrol bridges a Go process and a MATLAB-style numeric
// engine that exposes only a textual command interface and a flat named
// variable namespace.
//
// # Transport Selection
//
// The framed wire transport is the default. Use build tags to enable
// alternative transports:
//
//	go build              # wire only (default)
//	go build -tags grpc   # Enable gRPC transport
//
// The JSON-RPC-over-HTTP transport is always available for engines fronted
// by an HTTP gateway.
//
// # Usage
//
// Session usage:
//
//	session, err := matlabcontrol.Dial(ctx, "localhost:9000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	proc := matlabcontrol.NewMatrixProcessor(session)
//
//	m, _ := matlabcontrol.NewMatrix([]float64{1, 2, 3, 4}, nil, []int{2, 2})
//	if err := proc.SetMatrix(ctx, "m", m); err != nil {
//	    log.Fatal(err)
//	}
//	back, err := proc.GetMatrix(ctx, "m")
//
// Hosting an engine (typically in the process that embeds the engine):
//
//	server, err := matlabcontrol.Listen(":9000", engine)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server.Serve(ctx)
//
// # Consistency
//
// The engine namespace is shared, long lived, and mutable by anything else
// in the engine session. The multi-step matrix protocols run with no remote
// transaction support: a concurrent reassignment of a variable between the
// steps of GetMatrix can yield a value mixing data from different versions,
// and a failed SetMatrix can leave its temporary variables bound. Neither is
// defended against here; callers that control the engine session can layer
// their own serialization on top of the Session.Dispatch boundary.
//
// # Architecture
//
// The package separates concerns:
//
//   - matlab.go: Thread/Unit/Session interfaces and dial options
//   - matrix.go: the immutable Matrix value
//   - processor.go: MatrixProcessor and the read/write protocols
//   - commands.go: engine command string construction
//   - codec.go: Codec interface and op payload encoding
//   - transport.go: transport registry for build-tag extensibility
//   - dial.go: Dial and Listen factory functions
//   - wire.go: framed TCP transport implementation (default)
//   - json.go: JSON-RPC over HTTP (for gateway deployments)
//   - dial_grpc.go: gRPC transport (requires -tags grpc)
//
// Application code should only depend on Session and MatrixProcessor, making
// transport selection a deployment decision rather than a code change.
package matlabcontrol
