package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame types exchanged with the thin client. The client drives the real
// browser history; the server runs the router. Client-to-server frames
// report URL changes and link activations, server-to-client frames push
// history writes and the resulting router state.
const (
	// FrameHello is the first client frame: the browser's current URL
	// and any state attached to the current history entry.
	FrameHello = "hello"

	// FramePopState reports an external navigation (back/forward).
	FramePopState = "popstate"

	// FrameLink reports a link activation for the server-side policy.
	FrameLink = "link"

	// FramePush instructs the client to history.pushState to URL.
	FramePush = "push"

	// FrameReplace instructs the client to history.replaceState to URL.
	FrameReplace = "replace"

	// FrameState carries the router state after a change: the matched
	// componentRef and parameters, for the view layer to render.
	FrameState = "state"

	// FrameError reports a server-side navigation failure to the client.
	FrameError = "error"
)

// MaxFrameSize bounds inbound frames. Anything larger is a protocol
// violation and closes the session.
const MaxFrameSize = 16 * 1024

// ErrFrameTooLarge is returned for frames exceeding MaxFrameSize.
var ErrFrameTooLarge = errors.New("bridge: frame too large")

// ErrInvalidFrame is returned for frames that do not decode or carry an
// unknown type.
var ErrInvalidFrame = errors.New("bridge: invalid frame")

// Frame is the wire representation of a bridge message. Fields are
// populated according to Type.
type Frame struct {
	Type string `json:"type"`

	// URL is the path+query+fragment for hello, popstate, push, replace
	// and state frames.
	URL string `json:"url,omitempty"`

	// State is the opaque history-entry state, round-tripped untouched.
	State json.RawMessage `json:"state,omitempty"`

	// Link activation fields (FrameLink).
	Href             string `json:"href,omitempty"`
	Button           int    `json:"button,omitempty"`
	MetaKey          bool   `json:"metaKey,omitempty"`
	CtrlKey          bool   `json:"ctrlKey,omitempty"`
	ShiftKey         bool   `json:"shiftKey,omitempty"`
	AltKey           bool   `json:"altKey,omitempty"`
	DefaultPrevented bool   `json:"defaultPrevented,omitempty"`
	SameOrigin       bool   `json:"sameOrigin,omitempty"`
	Target           string `json:"target,omitempty"`
	Download         bool   `json:"download,omitempty"`

	// Router state fields (FrameState).
	Component string            `json:"component,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	NoMatch   bool              `json:"noMatch,omitempty"`

	// Message is the human-readable detail on error frames.
	Message string `json:"message,omitempty"`
}

// EncodeFrame serializes a frame.
func EncodeFrame(f *Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("bridge: encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame parses and validates an inbound frame.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	switch f.Type {
	case FrameHello, FramePopState:
		if f.URL == "" {
			return nil, fmt.Errorf("%w: %s frame without url", ErrInvalidFrame, f.Type)
		}
	case FrameLink:
		if f.Href == "" {
			return nil, fmt.Errorf("%w: link frame without href", ErrInvalidFrame)
		}
	case FramePush, FrameReplace, FrameState, FrameError:
		// Server-to-client types are not accepted inbound.
		return nil, fmt.Errorf("%w: unexpected %s frame from client", ErrInvalidFrame, f.Type)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidFrame, f.Type)
	}

	return &f, nil
}
