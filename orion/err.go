package orion

import (
	"fmt"
	"log/slog"
)

// Handle panics if err is not nil. It is meant for setup code in
// examples where there is no sensible way to recover.
func Handle(err error, desc string, args ...any) {
	if err != nil {
		text := fmt.Sprintf(desc, args...)
		slog.Error(text, slog.String("err", err.Error()))
		panic(text + ": " + err.Error())
	}
}
