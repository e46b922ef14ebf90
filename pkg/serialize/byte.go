// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package serialize

// Byte is a Serializer[[]byte] that copies bytes to/from the file
// verbatim. Grounded on ByteSerializer in
// original_source/fuzzcheck/src/serializers/mod.rs.
type Byte struct {
	Ext string
}

func NewByte(ext string) Byte { return Byte{Ext: ext} }

func (b Byte) Extension() string { return b.Ext }

func (b Byte) FromData(data []byte) ([]byte, bool) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

func (b Byte) ToData(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
