// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jsoncodec encodes RPC messages in the JSON framing spoken by
// the controller API.
package jsoncodec

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/juju-dashboard/rpc"
)

var logger = loggo.GetLogger("dashboard.rpc.jsoncodec")

// JSONConn sends and receives messages to an underlying connection
// in JSON format.
type JSONConn interface {
	// Send sends a message.
	Send(msg interface{}) error
	// Receive receives a message into msg.
	Receive(msg interface{}) error
	Close() error
}

// Codec implements rpc.Codec for a connection.
type Codec struct {
	// msg holds the message that's just been read by ReadHeader, so
	// that the body can be read by ReadBody.
	msg  inMsg
	conn JSONConn

	mu      sync.Mutex
	closing bool
}

// New returns an rpc codec that uses conn to send and receive
// messages.
func New(conn JSONConn) *Codec {
	return &Codec{
		conn: conn,
	}
}

// inMsg holds an incoming message. The params and response are kept
// raw until ReadBody knows what to decode them into.
type inMsg struct {
	RequestId uint64                 `json:"request-id"`
	Type      string                 `json:"type"`
	Version   int                    `json:"version"`
	Id        string                 `json:"id"`
	Request   string                 `json:"request"`
	Params    json.RawMessage        `json:"params"`
	Error     string                 `json:"error"`
	ErrorCode string                 `json:"error-code"`
	ErrorInfo map[string]interface{} `json:"error-info"`
	Response  json.RawMessage        `json:"response"`
}

// outMsg holds an outgoing message.
type outMsg struct {
	RequestId uint64                 `json:"request-id,omitempty"`
	Type      string                 `json:"type,omitempty"`
	Version   int                    `json:"version,omitempty"`
	Id        string                 `json:"id,omitempty"`
	Request   string                 `json:"request,omitempty"`
	Params    interface{}            `json:"params,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ErrorCode string                 `json:"error-code,omitempty"`
	ErrorInfo map[string]interface{} `json:"error-info,omitempty"`
	Response  interface{}            `json:"response,omitempty"`
}

// Close implements rpc.Codec.
func (c *Codec) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Codec) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// ReadHeader implements rpc.Codec.
func (c *Codec) ReadHeader(hdr *rpc.Header) error {
	c.msg = inMsg{}
	if err := c.conn.Receive(&c.msg); err != nil {
		// If we've closed the connection, we may get a spurious error,
		// so ignore it.
		if c.isClosing() || errors.Is(err, io.EOF) {
			return io.EOF
		}
		return errors.Annotate(err, "receiving message")
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("<- request-id %d %s.%s error %q", c.msg.RequestId, c.msg.Type, c.msg.Request, c.msg.Error)
	}
	hdr.RequestId = c.msg.RequestId
	hdr.Request = rpc.Request{
		Type:    c.msg.Type,
		Version: c.msg.Version,
		Id:      c.msg.Id,
		Action:  c.msg.Request,
	}
	hdr.Error = c.msg.Error
	hdr.ErrorCode = c.msg.ErrorCode
	hdr.ErrorInfo = c.msg.ErrorInfo
	return nil
}

// ReadBody implements rpc.Codec.
func (c *Codec) ReadBody(body interface{}, isRequest bool) error {
	if body == nil {
		return nil
	}
	var rawBody json.RawMessage
	if isRequest {
		rawBody = c.msg.Params
	} else {
		rawBody = c.msg.Response
	}
	if len(rawBody) == 0 {
		// If the response or params are omitted, it's
		// equivalent to an empty object.
		return nil
	}
	return errors.Trace(json.Unmarshal(rawBody, body))
}

// WriteMessage implements rpc.Codec.
func (c *Codec) WriteMessage(hdr *rpc.Header, body interface{}) error {
	msg := &outMsg{
		RequestId: hdr.RequestId,
		Type:      hdr.Request.Type,
		Version:   hdr.Request.Version,
		Id:        hdr.Request.Id,
		Request:   hdr.Request.Action,
		Error:     hdr.Error,
		ErrorCode: hdr.ErrorCode,
		ErrorInfo: hdr.ErrorInfo,
	}
	if hdr.IsRequest() {
		msg.Params = body
	} else {
		msg.Response = body
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("-> request-id %d %s.%s", msg.RequestId, msg.Type, msg.Request)
	}
	return errors.Trace(c.conn.Send(msg))
}
