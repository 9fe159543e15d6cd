package bridge

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame. Icon payloads are the largest
// messages; a 1024px PNG stays well below this.
const MaxFrameSize = 16 << 20

// ErrMalformedFrame is returned when a frame header is unusable. The
// stream cannot be resynchronized after it.
var ErrMalformedFrame = errors.New("malformed frame")

// Message types on the wire.
const (
	TypeResponse = "response"
	TypeEvent    = "event"
)

// EventFileOpened is pushed for every file the OS asks us to open while a
// subscription is active.
const EventFileOpened = "fileOpened"

// Request is a method call from the application layer. Args holds the
// method's arguments: a bare JSON string for single-path methods, an
// object otherwise.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Response answers exactly one Request. Result is always present, null
// when the operation has nothing to return.
type Response struct {
	Type    string `json:"type"`
	ID      uint64 `json:"id"`
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Error   *Error `json:"error,omitempty"`
}

// Event is an unsolicited message for an active subscription.
type Event struct {
	Type         string `json:"type"`
	Event        string `json:"event"`
	Subscription string `json:"subscription"`
	Path         string `json:"path"`
}

func success(id uint64, result any) Response {
	return Response{Type: TypeResponse, ID: id, Success: true, Result: result}
}

func failure(id uint64, err *Error) Response {
	return Response{Type: TypeResponse, ID: id, Error: err}
}

// ReadFrame reads one 32-bit little-endian length-prefixed frame.
// It returns io.EOF only when the stream ends cleanly between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}

	if length == 0 {
		return nil, fmt.Errorf("%w: zero length", ErrMalformedFrame)
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrMalformedFrame, length, MaxFrameSize)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame marshals v as JSON and writes it as one frame.
func WriteFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMalformedFrame, len(data), MaxFrameSize)
	}

	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// DecodeRequest parses a frame body into a Request.
func DecodeRequest(frame []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return Request{}, malformed("decode request: %v", err)
	}
	if req.Method == "" {
		return req, malformed("request %d: missing method", req.ID)
	}
	return req, nil
}
