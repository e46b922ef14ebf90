// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import "reflect"

// typeOf returns the reflect.Type tag used to match crossover candidates
// against a generic T, Go's stand-in for Rust's TypeId.
func typeOf[T any](zero T) reflect.Type {
	return reflect.TypeOf(&zero).Elem()
}
