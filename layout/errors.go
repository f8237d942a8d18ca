package layout

import (
	"fmt"

	"github.com/yaoapp/kun/exception"
)

// LayerNotFoundError is returned when a LayerProxy resolves its name
// against a Data whose layer has since been removed (see LayerProxy).
type LayerNotFoundError struct {
	Name string
}

func (e *LayerNotFoundError) Error() string {
	return fmt.Sprintf("layout: layer %q not found", e.Name)
}

// throwInvariant raises a ModelInvariantError via kun/exception, a
// panic, the same way an unrecoverable startup failure gets raised.
// Model-invariant violations are API misuse
// (duplicate layer name, wrong hold-tap arity, ...), never a condition
// a well-behaved caller should need to branch on, so the managers
// panic instead of threading an error return through every fluent
// call; package export recovers at its public boundary (KeymapBuilder
// and ConfigBuilder's Generate) and turns the panic back into a plain
// error.
func throwInvariant(format string, args ...interface{}) {
	exception.New(format, 500, args...).Throw()
}
