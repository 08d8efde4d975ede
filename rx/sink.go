package rx

// ForEach calls f for every value. An error goes to the error handler.
func ForEach[T any](src Observable[T], f func(T)) Subscription {
	return src.Subscribe(f, nil, nil)
}

// Drain subscribes to src and discards its values.
func Drain[T any](src Observable[T]) Subscription {
	return src.Subscribe(nil, nil, nil)
}

// Notification is one signal of a stream as a value. Exactly one of the last
// notifications sent for a stream has Err set or Done true.
type Notification[T any] struct {
	Value T
	Err   error
	Done  bool
}

// Into subscribes src and feeds every signal to subject.
func Into[T any](src Observable[T], subject Subject[T]) Subscription {
	return src.SubscribeObserver(subject.AsObserver())
}
