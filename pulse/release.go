package pulse

import (
	"log/slog"
	"reflect"
	"runtime"
)

type Releaser interface {
	Release()
}

// ReleaseGuard releases a value when leaving a scope early, unless
// Keep was called before.
type ReleaseGuard struct {
	delegate Releaser
}

func NewReleaseGuard(delegate Releaser) ReleaseGuard {
	return ReleaseGuard{delegate: delegate}
}

func (r *ReleaseGuard) Keep() {
	r.delegate = nil
}

func (r *ReleaseGuard) Release() {
	if r.delegate != nil {
		r.delegate.Release()
		r.delegate = nil
	}
}

// releaseWithGC calls Release on value once it is garbage collected.
func releaseWithGC[T Releaser](value T) T {
	runtime.SetFinalizer(value, releaseNow[T])
	return value
}

func releaseNow[T Releaser](value T) {
	typ := reflect.TypeOf(value).String()
	slog.Debug("Releasing garbage collected instance", slog.String("type", typ))

	value.Release()
}
