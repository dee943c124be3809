// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package options

import "iter"

// Apply yields all non-nil options of type T from the given lists, in order.
func Apply[T, O any](opts []O, rest ...O) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, list := range [][]O{opts, rest} {
			for _, opt := range list {
				if op, ok := any(opt).(T); ok && any(op) != nil && !yield(op) {
					return
				}
			}
		}
	}
}
