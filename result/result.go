// Package result carries a value or an error through collections where a
// failure must not stop the remaining items.
package result

type Of[T any] struct {
	v   *T
	err error
}

// Unwrap panics when r holds an error.
func (r Of[T]) Unwrap() *T {
	if nil != r.err {
		panic("cannot get value of error result")
	}

	return r.v
}

func (r Of[T]) Err() error {
	return r.err
}

func (r Of[T]) Get() (*T, error) {
	return r.v, r.err
}

func (r Of[T]) IsOk() bool {
	return nil == r.err
}

func Ok[T any](v *T) Of[T] {
	return Of[T]{v: v, err: nil}
}

func Err[T any](err error) Of[T] {
	return Of[T]{err: err, v: nil}
}
