package bridge

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "hello", data: `{"type":"hello","url":"/users/42"}`, want: FrameHello},
		{name: "popstate", data: `{"type":"popstate","url":"/","state":{"n":1}}`, want: FramePopState},
		{name: "link", data: `{"type":"link","href":"/about","button":0,"sameOrigin":true}`, want: FrameLink},
		{name: "hello without url", data: `{"type":"hello"}`, wantErr: true},
		{name: "link without href", data: `{"type":"link"}`, wantErr: true},
		{name: "unknown type", data: `{"type":"teleport","url":"/"}`, wantErr: true},
		{name: "server type inbound", data: `{"type":"push","url":"/"}`, wantErr: true},
		{name: "not json", data: `push /users`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := DecodeFrame([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrame) {
					t.Fatalf("expected ErrInvalidFrame, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if frame.Type != tt.want {
				t.Errorf("type = %q, want %q", frame.Type, tt.want)
			}
		})
	}
}

func TestDecodeFrameTooLarge(t *testing.T) {
	data := append([]byte(`{"type":"hello","url":"/`), bytes.Repeat([]byte("a"), MaxFrameSize)...)
	data = append(data, []byte(`"}`)...)

	if _, err := DecodeFrame(data); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	in := &Frame{Type: FramePopState, URL: "/users/42?tab=posts", State: []byte(`{"scroll":120}`)}
	data, err := EncodeFrame(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.URL != in.URL {
		t.Errorf("url = %q, want %q", out.URL, in.URL)
	}
	if string(out.State) != string(in.State) {
		t.Errorf("state = %s, want %s", out.State, in.State)
	}
}
