// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec implements the structured method-call envelope carried
// on the bridge channel. The bridge does not invent a byte layout; the
// envelope is plain JSON.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed message")

// ErrorDetail is the structured error descriptor attached to a failed
// response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Message is the wire envelope. A message with a method and no id is a
// fire-and-forget call (events travel this way); a message with both is
// a request awaiting a response; a message with an id and no method is
// the response to that request.
type Message struct {
	ID     *int64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Args   map[string]any  `json:"args,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorDetail    `json:"error,omitempty"`
}

// Call builds a fire-and-forget method call
func Call(method string, args map[string]any) Message {
	return Message{Method: method, Args: args}
}

// Request builds a request with a correlation id
func Request(id int64, method string, args map[string]any) Message {
	return Message{ID: &id, Method: method, Args: args}
}

// Success builds the success response for a request id
func Success(id int64, result any) (Message, error) {
	var raw json.RawMessage
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return Message{}, err
		}
		raw = data
	}
	return Message{ID: &id, Result: raw}, nil
}

// Failure builds the error response for a request id
func Failure(id int64, code, message string, details any) Message {
	return Message{ID: &id, Error: &ErrorDetail{Code: code, Message: message, Details: details}}
}

// Codec encodes and decodes bridge envelopes
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// Standard is the JSON implementation of Codec
type Standard struct{}

func (Standard) Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (Standard) Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.ID == nil && msg.Method == "" {
		return Message{}, fmt.Errorf("%w: neither method nor id present", ErrMalformed)
	}
	return msg, nil
}
