package rx

// Take emits the first n values, then completes and releases upstream.
func Take[T any](src Observable[T], n int) Observable[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return lift(src, func(e Emitter[T]) Observer[T] {
		var count int
		return Observer[T]{
			OnNext: func(v T) {
				if count >= n {
					return
				}
				count++
				e.Next(v)
				if count == n {
					e.Complete()
				}
			},
		}
	})
}

// Skip drops the first n values.
func Skip[T any](src Observable[T], n int) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		var count int
		return Observer[T]{
			OnNext: func(v T) {
				if count < n {
					count++
					return
				}
				e.Next(v)
			},
		}
	})
}

// TakeLast buffers the latest n values and emits them on completion.
func TakeLast[T any](src Observable[T], n int) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		buffer := make([]T, 0, max(n, 0))
		return Observer[T]{
			OnNext: func(v T) {
				if n <= 0 {
					return
				}
				if len(buffer) == n {
					buffer = append(buffer[:0], buffer[1:]...)
				}
				buffer = append(buffer, v)
			},
			OnComplete: func() {
				for _, v := range buffer {
					e.Next(v)
				}
				e.Complete()
			},
		}
	})
}

// SkipLast holds back the latest n values; they are never emitted.
func SkipLast[T any](src Observable[T], n int) Observable[T] {
	if n <= 0 {
		return src
	}
	return lift(src, func(e Emitter[T]) Observer[T] {
		buffer := make([]T, 0, n+1)
		return Observer[T]{
			OnNext: func(v T) {
				buffer = append(buffer, v)
				if len(buffer) > n {
					head := buffer[0]
					buffer = append(buffer[:0], buffer[1:]...)
					e.Next(head)
				}
			},
		}
	})
}

// Buffer groups values into slices of count, opening a new slice every skip
// values. skip < count overlaps windows, skip > count leaves gaps. Windows
// still open on completion are emitted as they are.
func Buffer[T any](src Observable[T], count, skip int) Observable[[]T] {
	if count <= 0 || skip <= 0 {
		return Throw[[]T](RuntimeError("buffer: count and skip must be positive"))
	}
	return lift(src, func(e Emitter[[]T]) Observer[T] {
		var (
			index   int
			windows [][]T
		)
		return Observer[T]{
			OnNext: func(v T) {
				if index%skip == 0 {
					windows = append(windows, make([]T, 0, count))
				}
				index++

				open := windows[:0]
				var full [][]T
				for _, w := range windows {
					w = append(w, v)
					if len(w) == count {
						full = append(full, w)
						continue
					}
					open = append(open, w)
				}
				windows = open
				for _, w := range full {
					e.Next(w)
				}
			},
			OnComplete: func() {
				for _, w := range windows {
					if len(w) > 0 {
						e.Next(w)
					}
				}
				windows = nil
				e.Complete()
			},
		}
	})
}
