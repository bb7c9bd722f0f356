package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Parse    bool
	Move     bool
	Remap    bool
	Assemble bool
	Variants bool
	Props    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("USDX_DEBUG_PARSE")
	d.Move = boolEnv("USDX_DEBUG_MOVE")
	d.Remap = boolEnv("USDX_DEBUG_REMAP")
	d.Assemble = boolEnv("USDX_DEBUG_ASSEMBLE")
	d.Variants = boolEnv("USDX_DEBUG_VARIANTS")
	d.Props = boolEnv("USDX_DEBUG_PROPS")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Move() bool {
	return d.Move
}
func Remap() bool {
	return d.Remap
}
func Assemble() bool {
	return d.Assemble
}
func Variants() bool {
	return d.Variants
}
func Props() bool {
	return d.Props
}
