// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rpc

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/juju/errors"
)

// ErrShutdown is returned when a request is made on a connection that is
// shutting down.
const ErrShutdown = errors.ConstError("connection is shut down")

const codeNotImplemented = "not implemented"

// IsShutdownErr returns true if the error is ErrShutdown.
func IsShutdownErr(err error) bool {
	return errors.Is(err, ErrShutdown)
}

// Call represents an active RPC.
type Call struct {
	Request
	Params   interface{}
	Response interface{}
	Error    error
	Done     chan *Call
}

// RequestError represents an error returned from an RPC request.
type RequestError struct {
	Message string
	Code    string
	Info    map[string]interface{}
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return e.Message + " (" + e.Code + ")"
	}
	return e.Message
}

// ErrorCode returns the error code associated with the error.
func (e *RequestError) ErrorCode() string {
	return e.Code
}

// ErrorInfo returns the error information associated with the error.
func (e *RequestError) ErrorInfo() map[string]interface{} {
	return e.Info
}

// UnmarshalInfo unmarshals the Info field of the error into the value
// pointed to by to.
func (e *RequestError) UnmarshalInfo(to interface{}) error {
	if reflect.ValueOf(to).Kind() != reflect.Ptr {
		return errors.New("UnmarshalInfo expects a pointer as an argument")
	}
	data, err := json.Marshal(e.Info)
	if err != nil {
		return errors.Annotate(err, "could not marshal error information")
	}
	if err := json.Unmarshal(data, to); err != nil {
		return errors.Annotate(err, "could not unmarshal error information to provided target")
	}
	return nil
}

func (conn *Conn) send(call *Call) uint64 {
	conn.sending.Lock()
	defer conn.sending.Unlock()

	// Register this call.
	conn.mutex.Lock()
	if conn.dead == nil {
		call.Error = errors.New("call made when connection not started")
		conn.mutex.Unlock()
		call.done()
		return 0
	}
	if conn.closing || conn.shutdown {
		call.Error = ErrShutdown
		conn.mutex.Unlock()
		call.done()
		return 0
	}
	conn.reqId++
	reqId := conn.reqId
	conn.clientPending[reqId] = call
	conn.mutex.Unlock()

	hdr := &Header{
		RequestId: reqId,
		Request:   call.Request,
	}
	params := call.Params
	if params == nil {
		params = struct{}{}
	}
	if err := conn.codec.WriteMessage(hdr, params); err != nil {
		conn.mutex.Lock()
		call = conn.clientPending[reqId]
		delete(conn.clientPending, reqId)
		conn.mutex.Unlock()
		if call != nil {
			call.Error = errors.Annotate(err, "sending request")
			call.done()
		}
	}
	return reqId
}

func (conn *Conn) cancel(reqId uint64) {
	conn.mutex.Lock()
	conn.tombstones[reqId] = struct{}{}
	delete(conn.clientPending, reqId)
	conn.mutex.Unlock()
}

func (conn *Conn) handleResponse(hdr *Header) error {
	reqId := hdr.RequestId
	conn.mutex.Lock()
	call := conn.clientPending[reqId]
	delete(conn.clientPending, reqId)
	conn.mutex.Unlock()

	defer func() {
		conn.mutex.Lock()
		delete(conn.tombstones, reqId)
		conn.mutex.Unlock()
	}()

	var err error
	switch {
	case call == nil:
		// Either the caller gave up on the request or the write
		// failed part way. The body still has to be consumed.
		err = conn.readBody(nil, false)
		conn.mutex.Lock()
		_, cancelled := conn.tombstones[reqId]
		conn.mutex.Unlock()
		if !cancelled {
			logger.Debugf("discarding response to unknown request %d", reqId)
		}
	case hdr.Error != "":
		if strings.HasPrefix(hdr.Error, "no such request ") && hdr.ErrorCode == "" {
			hdr.ErrorCode = codeNotImplemented
		}
		call.Error = &RequestError{
			Message: hdr.Error,
			Code:    hdr.ErrorCode,
			Info:    hdr.ErrorInfo,
		}
		err = conn.readBody(nil, false)
		call.done()
	default:
		err = conn.readBody(call.Response, false)
		if err != nil {
			call.Error = errors.Annotate(err, "reading response")
		}
		call.done()
	}
	return errors.Annotate(err, "error handling response")
}

func (call *Call) done() {
	select {
	case call.Done <- call:
	default:
		// The Done channel is always created with room for the reply.
		logger.Errorf("discarding Call reply due to insufficient Done chan capacity")
	}
}

// Call invokes the named action on the object of the given type with the given
// id. The returned values will be stored in response, which should be a pointer.
// If the action fails remotely, the error will have a cause of type RequestError.
// The params value may be nil if no parameters are provided; the response value
// may be nil to indicate that any result should be discarded.
func (conn *Conn) Call(ctx context.Context, req Request, params, response interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	call := &Call{
		Request:  req,
		Params:   params,
		Response: response,
		Done:     make(chan *Call, 1),
	}
	reqId := conn.send(call)
	if reqId == 0 {
		return call.Error
	}
	select {
	case <-ctx.Done():
		conn.cancel(reqId)
		return errors.Trace(ctx.Err())
	case result := <-call.Done:
		return errors.Trace(result.Error)
	}
}
