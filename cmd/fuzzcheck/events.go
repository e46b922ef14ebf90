// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"net"
	"time"

	"github.com/loiclec/fuzzcheck-go/pkg/corpus"
	"github.com/loiclec/fuzzcheck-go/pkg/uievents"
)

// uiStream streams the fuzz command's progress to an optional TUI over
// the §6.3 IPC protocol. Connection failures while streaming are
// ignored: a disconnected UI must never slow down or abort a fuzzing run.
type uiStream struct {
	conn net.Conn
}

func dialUIStream(address string) (*uiStream, error) {
	conn, err := net.DialTimeout("tcp", address, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &uiStream{conn: conn}, nil
}

func (u *uiStream) AddInput(input string) {
	u.send(uievents.FromFuzzer{AddInput: &uievents.InputMessage{Hash: corpus.Hash([]byte(input)), Input: input}})
}

func (u *uiStream) SaveArtifact(input string) {
	u.send(uievents.FromFuzzer{SaveArtifact: &uievents.InputMessage{Hash: corpus.Hash([]byte(input)), Input: input}})
}

func (u *uiStream) Stopped() {
	u.send(uievents.FromFuzzer{Stopped: &struct{}{}})
}

func (u *uiStream) send(msg uievents.FromFuzzer) {
	_ = uievents.WriteMessage(u.conn, msg)
}

func (u *uiStream) Close() error {
	return u.conn.Close()
}
