package debug

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *scene.Node:
			if x == nil {
				args[i] = "<nil node>"
				continue
			}
			args[i] = fmt.Sprintf("%s %s %q", x.Specifier, x.TypeName, x.Path())
		case []scene.Move:
			d, err := json.MarshalIndent(x, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case bool, string, float64, int:

		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
