// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package serialize

// Text is a Serializer[T] for any T with Parse/String round-tripping
// through UTF-8 text, the FromStr/ToString equivalent of
// StringSerializer in original_source/fuzzcheck/src/serializers/mod.rs.
type Text[T any] struct {
	Ext   string
	Parse func(string) (T, bool)
	Show  func(T) string
}

func NewText[T any](ext string, parse func(string) (T, bool), show func(T) string) Text[T] {
	return Text[T]{Ext: ext, Parse: parse, Show: show}
}

func (t Text[T]) Extension() string { return t.Ext }

func (t Text[T]) FromData(data []byte) (T, bool) {
	return t.Parse(string(data))
}

func (t Text[T]) ToData(value T) []byte {
	return []byte(t.Show(value))
}
