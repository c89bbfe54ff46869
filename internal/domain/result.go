package domain

// Result is the outcome of a single generated item: a value, or the reason it
// could not be produced.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

func (r Result[T]) OK() bool { return r.Err == nil }

// Collect splits results into accepted values and failures, preserving order.
func Collect[T any](results []Result[T]) ([]T, []error) {
	var (
		values []T
		errs   []error
	)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		values = append(values, r.Value)
	}
	return values, errs
}
