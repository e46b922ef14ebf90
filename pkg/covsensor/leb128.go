// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package covsensor is the process-wide code-coverage sensor (§4.9): it
// locates the compiler-instrumented counter region at startup and decodes
// the delta-encoded counter stream a coverage-enabled build emits.
//
// Grounded on original_source/fuzzcheck/src/code_coverage_sensor/leb128.rs
// for the wire format; the OS-introspection step that locates the
// counter section (reading the executable's instrumentation metadata) is
// platform-specific to Rust's sancov integration and has no Go
// equivalent in this pack, so it is abstracted behind the Source
// interface in coverage.go (§9's "process-wide instrumentation coupling"
// design note explicitly sanctions substituting a user-maintained
// ArrayOfCounters when compiler counters aren't available).
package covsensor

// ReadUvarint decodes one unsigned LEB128 varint from buf, returning the
// value and the number of bytes consumed.
func ReadUvarint(buf []byte) (uint64, int) {
	var result uint64
	var shift uint
	for pos := 0; pos < len(buf); pos++ {
		b := buf[pos]
		if b&0x80 == 0 {
			result |= uint64(b) << shift
			return result, pos + 1
		}
		result |= uint64(b&0x7F) << shift
		shift += 7
	}
	return result, len(buf)
}

// AppendUvarint appends the LEB128 encoding of v to buf.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// DecodeCounterDeltas decodes a stream of (index-delta, count) varint
// pairs into absolute (index, count) observations. Deltas let a mostly-flat
// counter array compress away long runs of unhit counters, the same
// trick the original LEB128 framing exists to support.
func DecodeCounterDeltas(buf []byte) []Hit {
	var hits []Hit
	var index uint64
	for len(buf) > 0 {
		delta, n := ReadUvarint(buf)
		buf = buf[n:]
		if len(buf) == 0 {
			break
		}
		count, n2 := ReadUvarint(buf)
		buf = buf[n2:]
		index += delta
		hits = append(hits, Hit{Index: int(index), Count: count})
	}
	return hits
}

// EncodeCounterDeltas is DecodeCounterDeltas's inverse, used by tests and
// by any in-process harness that wants to feed the sensor through the
// same wire format real instrumentation would produce.
func EncodeCounterDeltas(hits []Hit) []byte {
	var buf []byte
	var prev uint64
	for _, h := range hits {
		idx := uint64(h.Index)
		buf = AppendUvarint(buf, idx-prev)
		buf = AppendUvarint(buf, h.Count)
		prev = idx
	}
	return buf
}

// Hit is one decoded (counter index, raw hit count) observation.
type Hit struct {
	Index int
	Count uint64
}
