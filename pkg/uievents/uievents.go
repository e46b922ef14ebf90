// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package uievents defines the optional TUI IPC protocol (§6.3): a TCP
// connection carrying u32-big-endian-length-prefixed UTF-8 JSON messages.
// This package only specifies the message shapes and framing helpers —
// no TUI client or server is implemented here.
package uievents

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// FromFuzzer message variants (§6.3).
type FromFuzzer struct {
	AddInput    *InputMessage `json:"AddInput,omitempty"`
	RemoveInput *InputMessage `json:"RemoveInput,omitempty"`
	SaveArtifact *InputMessage `json:"SaveArtifact,omitempty"`
	ReportEvent *EventMessage `json:"ReportEvent,omitempty"`
	Paused      *struct{}     `json:"Paused,omitempty"`
	UnPaused    *struct{}     `json:"UnPaused,omitempty"`
	Stopped     *struct{}     `json:"Stopped,omitempty"`
}

type InputMessage struct {
	Hash  string `json:"hash"`
	Input string `json:"input"`
}

type EventMessage struct {
	Event  string `json:"event"`
	Stats  string `json:"stats"`
	TimeMs int64  `json:"time_ms"`
}

// FromUI message variants (§6.3).
type FromUI struct {
	Pause                *struct{} `json:"Pause,omitempty"`
	UnPause              *struct{} `json:"UnPause,omitempty"`
	UnPauseUntilNextEvent *struct{} `json:"UnPauseUntilNextEvent,omitempty"`
	Stop                 *struct{} `json:"Stop,omitempty"`
}

// WriteMessage frames v as a u32 big-endian length prefix followed by its
// JSON encoding and writes it to w.
func WriteMessage(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadMessage reads one length-prefixed JSON message from r and unmarshals
// it into v.
func ReadMessage(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(header[:])
	const maxMessageSize = 64 << 20
	if n > maxMessageSize {
		return fmt.Errorf("uievents: message of %d bytes exceeds %d byte limit", n, maxMessageSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
