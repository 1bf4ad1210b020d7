// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrWireClosed       = errors.New("wire: connection closed")
	ErrWireInvalidFrame = errors.New("wire: invalid frame")
)

// frameType identifies wire frame types
type frameType uint8

const (
	frameRequest  frameType = 0x01
	frameResponse frameType = 0x02
	frameError    frameType = 0x03
)

// opCode identifies the engine operation carried by a request frame
type opCode uint8

const (
	opEval          opCode = 0x01
	opEvalReturning opCode = 0x02
	opSetVariable   opCode = 0x03
)

// maxFrameSize bounds a single frame; large matrices are flat float64
// arrays, so 64MB covers ~8M elements per operation.
const maxFrameSize = 64 * 1024 * 1024

// WireConn is a client connection speaking the framed engine protocol
type WireConn struct {
	conn     net.Conn
	writeMu  sync.Mutex
	pending  sync.Map // requestID -> chan *wireResponse
	nextID   atomic.Uint32
	closed   atomic.Bool
	readDone chan struct{}
}

// wireResponse holds one response frame's payload or error
type wireResponse struct {
	data []byte
	err  error
}

// DialWire connects to a wire engine server
func DialWire(ctx context.Context, addr string) (*WireConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire dial: %w", err)
	}

	wc := &WireConn{
		conn:     conn,
		readDone: make(chan struct{}),
	}
	go wc.readLoop()
	return wc, nil
}

// roundTrip sends one engine operation and waits for its response payload.
//
// Request frame: [4 len][1 type][4 reqID][1 op][payload]
func (w *WireConn) roundTrip(ctx context.Context, op opCode, payload []byte) ([]byte, error) {
	if w.closed.Load() {
		return nil, ErrWireClosed
	}

	requestID := w.nextID.Add(1)
	respCh := make(chan *wireResponse, 1)
	w.pending.Store(requestID, respCh)
	defer w.pending.Delete(requestID)

	msgLen := 1 + 4 + 1 + len(payload)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(frameRequest)
	binary.BigEndian.PutUint32(buf[5:9], requestID)
	buf[9] = byte(op)
	copy(buf[10:], payload)

	w.writeMu.Lock()
	_, err := w.conn.Write(buf)
	w.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("wire write: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		if resp.err != nil {
			return nil, resp.err
		}
		return resp.data, nil
	case <-w.readDone:
		return nil, ErrWireClosed
	}
}

func (w *WireConn) readLoop() {
	defer close(w.readDone)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(w.conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameSize {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(w.conn, msg); err != nil {
			return
		}

		if len(msg) < 5 {
			continue
		}

		ft := frameType(msg[0])
		requestID := binary.BigEndian.Uint32(msg[1:5])
		payload := msg[5:]

		if ch, ok := w.pending.Load(requestID); ok {
			respCh := ch.(chan *wireResponse)
			switch ft {
			case frameResponse:
				respCh <- &wireResponse{data: payload}
			case frameError:
				respCh <- &wireResponse{err: errors.New(string(payload))}
			}
		}
	}
}

// Close closes the connection
func (w *WireConn) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	return w.conn.Close()
}

// WireServer hosts an Engine behind the framed protocol, decoding each
// request frame into an engine operation and framing the reply.
type WireServer struct {
	listener net.Listener
	engine   Engine
	codec    Codec
	conns    sync.Map
	closed   atomic.Bool
}

// NewWireServer creates a server hosting engine on listener. A nil codec
// means the default JSON codec.
func NewWireServer(listener net.Listener, engine Engine, codec Codec) *WireServer {
	if codec == nil {
		codec = defaultCodec
	}
	return &WireServer{
		listener: listener,
		engine:   engine,
		codec:    codec,
	}
}

// Serve starts serving sessions
func (s *WireServer) Serve(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			// Back off so a persistent accept failure cannot spin the loop.
			time.Sleep(5 * time.Millisecond)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *WireServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.conns.Store(conn, struct{}{})
	defer s.conns.Delete(conn)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameSize {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(conn, msg); err != nil {
			return
		}

		if len(msg) < 6 || frameType(msg[0]) != frameRequest {
			continue
		}

		requestID := binary.BigEndian.Uint32(msg[1:5])
		op := opCode(msg[5])
		payload := msg[6:]

		// Operations from one session arrive strictly in dispatch order;
		// handling them synchronously preserves that order at the engine.
		respData, err := s.handleOp(ctx, op, payload)
		s.sendResponse(conn, requestID, respData, err)
	}
}

func (s *WireServer) handleOp(ctx context.Context, op opCode, payload []byte) ([]byte, error) {
	switch op {
	case opEval:
		var req evalRequest
		if err := s.codec.Decode(payload, &req); err != nil {
			return nil, fmt.Errorf("decode eval request: %w", err)
		}
		return nil, s.engine.Eval(ctx, req.Command)

	case opEvalReturning:
		var req evalReturningRequest
		if err := s.codec.Decode(payload, &req); err != nil {
			return nil, fmt.Errorf("decode eval request: %w", err)
		}
		results, err := s.engine.EvalReturning(ctx, req.Command, req.Nargout)
		if err != nil {
			return nil, err
		}
		return s.codec.Encode(&evalReturningReply{Results: results})

	case opSetVariable:
		var req setVariableRequest
		if err := s.codec.Decode(payload, &req); err != nil {
			return nil, fmt.Errorf("decode set request: %w", err)
		}
		return nil, s.engine.SetVariable(ctx, req.Name, req.Value)

	default:
		return nil, fmt.Errorf("%w: unknown op 0x%02x", ErrWireInvalidFrame, byte(op))
	}
}

func (s *WireServer) sendResponse(conn net.Conn, requestID uint32, data []byte, err error) {
	var ft frameType
	var payload []byte
	if err != nil {
		ft = frameError
		payload = []byte(err.Error())
	} else {
		ft = frameResponse
		payload = data
	}

	msgLen := 1 + 4 + len(payload)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(ft)
	binary.BigEndian.PutUint32(buf[5:9], requestID)
	copy(buf[9:], payload)

	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	conn.Write(buf)
}

// Close closes the server
func (s *WireServer) Close() error {
	s.closed.Store(true)
	s.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return s.listener.Close()
}

// Addr returns the listener address
func (s *WireServer) Addr() net.Addr {
	return s.listener.Addr()
}
