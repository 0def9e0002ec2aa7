// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("dashboard.rpc")

// A Codec implements reading and writing of messages in an RPC
// session. The RPC code calls WriteMessage to write a message to the
// connection and calls ReadHeader and ReadBody in pairs to read
// messages.
type Codec interface {
	// ReadHeader reads a message header into hdr.
	ReadHeader(hdr *Header) error

	// ReadBody reads a message body into the given body value. The
	// isRequest parameter specifies whether the message being read
	// is a request; if not, it's a response. The body value will
	// be a non-nil struct pointer, or nil to signify that the body
	// should be read and discarded.
	ReadBody(body interface{}, isRequest bool) error

	// WriteMessage writes a message with the given header and body.
	WriteMessage(hdr *Header, body interface{}) error

	// Close closes the codec. It may be called concurrently
	// and should cause the Read methods to unblock.
	Close() error
}

// Request identifies the facade method being called.
type Request struct {
	// Type holds the facade name, for example "ModelManager".
	Type string

	// Version holds the facade version.
	Version int

	// Id holds the id of the object to act on, such as a watcher id.
	Id string

	// Action holds the method to invoke.
	Action string
}

// Header is a header written before every RPC message. The dashboard
// only ever sends requests, so a header read from the connection is
// normally a response to an outstanding call.
type Header struct {
	// RequestId holds the sequence number of the request.
	RequestId uint64

	// Request holds the action being requested.
	Request Request

	// Error holds the error, if any.
	Error string

	// ErrorCode holds the code of the error, if any.
	ErrorCode string

	// ErrorInfo holds additional information about the error.
	ErrorInfo map[string]interface{}
}

// IsRequest returns whether the header represents an RPC request. If
// it is not a request, it is a response.
func (hdr *Header) IsRequest() bool {
	return hdr.Request.Type != "" || hdr.Request.Action != ""
}

// Conn is the client end of an RPC session with a controller. There
// may be multiple outstanding Calls associated with a single Conn, and
// a Conn may be used by multiple goroutines simultaneously.
type Conn struct {
	codec Codec

	// sending guards the write side of the codec. It ensures
	// that codec.WriteMessage is not called concurrently.
	sending sync.Mutex

	// mutex guards the following values.
	mutex sync.Mutex

	// reqId holds the latest client request id.
	reqId uint64

	// clientPending holds all pending client requests.
	clientPending map[uint64]*Call

	// tombstones holds requests abandoned by their caller whose
	// responses may still arrive.
	tombstones map[uint64]struct{}

	// closing is set when the connection is shutting down via Close.
	closing bool

	// shutdown is set when the input loop terminates.
	shutdown bool

	// dead is closed when the input loop terminates.
	dead chan struct{}

	// inputLoopError holds the error that caused the input loop to
	// terminate prematurely. It is set before dead is closed.
	inputLoopError error
}

// NewConn creates a new connection that uses the given codec for
// transport, but it does not start it. Conn.Start must be called before
// any requests are sent.
func NewConn(codec Codec) *Conn {
	return &Conn{
		codec:         codec,
		clientPending: make(map[uint64]*Call),
		tombstones:    make(map[uint64]struct{}),
	}
}

// Start starts the connection reading responses. It has no effect if
// it has already been called.
func (conn *Conn) Start() {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()
	if conn.dead == nil {
		conn.dead = make(chan struct{})
		go conn.input()
	}
}

// Dead returns a channel that is closed when the connection
// has been closed or the underlying transport has received
// an error. There may still be outstanding requests.
func (conn *Conn) Dead() <-chan struct{} {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()
	return conn.dead
}

// Close closes the connection and its underlying codec. It returns
// when the input loop has finished, with the error that stopped it
// if that was not the close itself.
func (conn *Conn) Close() error {
	conn.mutex.Lock()
	if conn.closing {
		conn.mutex.Unlock()
		return errors.New("already closed")
	}
	conn.closing = true
	dead := conn.dead
	conn.mutex.Unlock()

	if err := conn.codec.Close(); err != nil {
		logger.Infof("error closing codec: %v", err)
	}
	if dead == nil {
		return nil
	}
	<-dead
	return conn.inputLoopError
}

// input reads messages from the connection and handles them
// appropriately.
func (conn *Conn) input() {
	err := conn.loop()
	conn.sending.Lock()
	defer conn.sending.Unlock()
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	if conn.closing || errors.Is(err, io.EOF) {
		err = ErrShutdown
	} else {
		conn.inputLoopError = err
	}
	// Terminate all client requests.
	for _, call := range conn.clientPending {
		call.Error = err
		call.done()
	}
	conn.clientPending = nil
	conn.shutdown = true
	close(conn.dead)
}

// loop implements the looping part of Conn.input.
func (conn *Conn) loop() error {
	for {
		var hdr Header
		if err := conn.codec.ReadHeader(&hdr); err != nil {
			return err
		}
		var err error
		if hdr.IsRequest() {
			err = conn.refuseRequest(&hdr)
		} else {
			err = conn.handleResponse(&hdr)
		}
		if err != nil {
			return err
		}
	}
}

func (conn *Conn) readBody(resp interface{}, isRequest bool) error {
	if resp == nil {
		resp = &struct{}{}
	}
	return conn.codec.ReadBody(resp, isRequest)
}

// refuseRequest answers a request initiated by the controller. The
// dashboard serves no methods.
func (conn *Conn) refuseRequest(hdr *Header) error {
	if err := conn.readBody(nil, true); err != nil {
		return err
	}
	logger.Debugf("refusing %s.%s request from server", hdr.Request.Type, hdr.Request.Action)
	conn.sending.Lock()
	defer conn.sending.Unlock()
	return conn.codec.WriteMessage(&Header{
		RequestId: hdr.RequestId,
		Error:     "no service",
		ErrorCode: codeNotImplemented,
	}, struct{}{})
}
