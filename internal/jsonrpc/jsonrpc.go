// Copyright 2026 The a2acall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jsonrpc provides the JSON-RPC 2.0 client envelope for A2A calls.
package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/agentwire/a2acall/a2a"
)

// JSON-RPC 2.0 protocol constants.
const (
	Version = "2.0"

	ContentJSON = "application/json"

	// MethodMessageSend is the A2A v0 method name for sending a message.
	MethodMessageSend = "message/send"
)

// Error represents a JSON-RPC 2.0 error object. Code and Message are the
// remote agent's values and are never rewritten locally.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("jsonrpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

var codeToError = map[int]error{
	-32700: a2a.ErrParseError,
	-32600: a2a.ErrInvalidRequest,
	-32601: a2a.ErrMethodNotFound,
	-32602: a2a.ErrInvalidParams,
	-32603: a2a.ErrInternalError,
	-32000: a2a.ErrServerError,
	-32001: a2a.ErrTaskNotFound,
	-32002: a2a.ErrTaskNotCancelable,
	-32003: a2a.ErrPushNotificationNotSupported,
	-32004: a2a.ErrUnsupportedOperation,
	-32005: a2a.ErrUnsupportedContentType,
	-32006: a2a.ErrInvalidAgentResponse,
}

// ToA2AError converts a JSON-RPC error to an [a2a.Error]. The remote message
// is carried over verbatim; only the errors.Is classification is added.
func (e *Error) ToA2AError() error {
	err, ok := codeToError[e.Code]
	if !ok {
		err = a2a.ErrInternalError
	}

	msg := e.Message
	if len(msg) == 0 {
		msg = err.Error()
	}

	result := a2a.NewError(err, msg)
	result.Code = e.Code
	if len(e.Data) > 0 {
		result = result.WithDetails(e.Data)
	}
	return result
}

// ClientRequest represents a JSON-RPC 2.0 client request.
type ClientRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      string `json:"id"`
}

// ClientResponse represents a JSON-RPC 2.0 client response.
type ClientResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}
