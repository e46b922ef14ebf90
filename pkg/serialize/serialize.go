// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package serialize implements the Serializer protocol (§4.8): the
// interface the scheduler uses to decode corpus files into values and
// encode values back out to corpus files at each delta flush. Three
// implementations are provided: a byte-identity serializer, a
// FromStr/ToString text serializer, and a yaml.v3-backed structured
// serializer for values that carry their own AST.
package serialize

// Serializer converts between a corpus file's bytes and a value T.
// Extension is the file suffix the scheduler should use when naming new
// corpus/artifact files for this serializer (§6.2).
type Serializer[T any] interface {
	Extension() string
	FromData(data []byte) (T, bool)
	ToData(value T) []byte
}
