package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Engine.IO v4 packet types
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Socket.IO v4 packet types, carried inside an Engine.IO message
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketConnectError = '4'
)

type frameKind int

const (
	frameOpen frameKind = iota
	frameClose
	framePing
	framePong
	frameNoop
	frameConnect
	frameDisconnect
	frameEvent
	frameConnectError
)

var errMalformedFrame = errors.New("malformed frame")

// frame is one decoded websocket text message
type frame struct {
	kind  frameKind
	event string
	args  []json.RawMessage
	data  json.RawMessage // open handshake, connect ack or connect_error payload
}

// openPayload is the Engine.IO handshake sent by the server
type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// liveness returns how long the connection may stay silent before it is considered dead
func (o openPayload) liveness() time.Duration {
	if o.PingInterval <= 0 || o.PingTimeout <= 0 {
		return 0
	}
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

// connectError is the payload of a rejected namespace connect
type connectError struct {
	Message string `json:"message"`
}

// rejectionReason reads the reason out of a connect_error payload. Older
// servers send a bare string; anything undecodable is reported verbatim.
func rejectionReason(data json.RawMessage) string {
	var ce connectError
	err := json.Unmarshal(data, &ce)
	if err == nil && ce.Message != "" {
		return ce.Message
	}
	var bare string
	if json.Unmarshal(data, &bare) == nil && bare != "" {
		return bare
	}
	if err != nil {
		log.Debug("Undecodable connect_error payload %q: %v", data, err)
	}
	if raw := string(bytes.TrimSpace(data)); raw != "" {
		return raw
	}
	return "no reason given"
}

func parseFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, errMalformedFrame
	}
	switch b[0] {
	case engineOpen:
		return frame{kind: frameOpen, data: json.RawMessage(b[1:])}, nil
	case engineClose:
		return frame{kind: frameClose}, nil
	case enginePing:
		return frame{kind: framePing}, nil
	case enginePong:
		return frame{kind: framePong}, nil
	case engineNoop:
		return frame{kind: frameNoop}, nil
	case engineMessage:
		return parseSocketPacket(b[1:])
	default:
		return frame{}, fmt.Errorf("%w: unknown engine packet type %q", errMalformedFrame, b[0])
	}
}

func parseSocketPacket(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, errMalformedFrame
	}
	kind := b[0]
	rest := skipNamespace(b[1:])

	switch kind {
	case socketConnect:
		return frame{kind: frameConnect, data: json.RawMessage(rest)}, nil
	case socketDisconnect:
		return frame{kind: frameDisconnect}, nil
	case socketConnectError:
		return frame{kind: frameConnectError, data: json.RawMessage(rest)}, nil
	case socketEvent:
		// optional ack id precedes the payload
		for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			rest = rest[1:]
		}
		var args []json.RawMessage
		if err := json.Unmarshal(rest, &args); err != nil {
			return frame{}, fmt.Errorf("%w: event payload: %v", errMalformedFrame, err)
		}
		if len(args) == 0 {
			return frame{}, fmt.Errorf("%w: event without name", errMalformedFrame)
		}
		var name string
		if err := json.Unmarshal(args[0], &name); err != nil {
			return frame{}, fmt.Errorf("%w: event name: %v", errMalformedFrame, err)
		}
		return frame{kind: frameEvent, event: name, args: args[1:]}, nil
	default:
		return frame{}, fmt.Errorf("%w: unsupported socket packet type %q", errMalformedFrame, kind)
	}
}

// skipNamespace drops a "/nsp," prefix; the client only uses the default namespace
func skipNamespace(b []byte) []byte {
	if len(b) == 0 || b[0] != '/' {
		return b
	}
	if i := bytes.IndexByte(b, ','); i >= 0 {
		return b[i+1:]
	}
	return nil
}

// payload returns the first event argument, or null
func (f frame) payload() json.RawMessage {
	if len(f.args) == 0 {
		return json.RawMessage("null")
	}
	return f.args[0]
}

func encodeConnect() []byte {
	return []byte{engineMessage, socketConnect}
}

func encodePong() []byte {
	return []byte{enginePong}
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	args := []interface{}{event}
	if data != nil {
		args = append(args, data)
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return append([]byte{engineMessage, socketEvent}, body...), nil
}
