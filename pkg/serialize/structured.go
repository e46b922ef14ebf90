// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package serialize

import "gopkg.in/yaml.v3"

// Structured is a Serializer[T] backed by gopkg.in/yaml.v3, the
// structured-data equivalent of original_source/fuzzcheck's
// serde_serializer.rs/serde_ron_serializer.rs (serde_json/RON behind
// Cargo feature gates) for any T whose fields are themselves
// straightforwardly marshalable.
type Structured[T any] struct {
	Ext string
}

func NewStructured[T any](ext string) Structured[T] {
	return Structured[T]{Ext: ext}
}

func (s Structured[T]) Extension() string { return s.Ext }

func (s Structured[T]) FromData(data []byte) (T, bool) {
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func (s Structured[T]) ToData(value T) []byte {
	out, err := yaml.Marshal(value)
	if err != nil {
		return nil
	}
	return out
}
