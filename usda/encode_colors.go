package usda

import (
	"strings"

	"github.com/fatih/color"
)

type ColorAttr int

const (
	KeywordColor ColorAttr = iota
	TypeColor
	NameColor
	PropertyColor
	MetadataColor
	StringColor
	NumberColor
	PathColor
	AssetColor
	SepColor
	CommentColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[ColorAttr]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map: map[ColorAttr]func(string, ...any) string{
			KeywordColor:  color.RGB(168, 0, 196).SprintfFunc(),
			TypeColor:     color.RGB(128, 168, 196).SprintfFunc(),
			NameColor:     color.RGB(196, 96, 16).SprintfFunc(),
			PropertyColor: color.RGB(196, 168, 128).SprintfFunc(),
			MetadataColor: color.RGB(74, 92, 138).SprintfFunc(),
			StringColor:   color.RGB(8, 196, 16).SprintfFunc(),
			NumberColor:   color.RGB(128, 216, 236).SprintfFunc(),
			PathColor:     color.RGB(198, 198, 46).SprintfFunc(),
			AssetColor:    color.RGB(88, 158, 86).SprintfFunc(),
			SepColor:      color.RGB(255, 0, 196).SprintfFunc(),
			CommentColor:  color.BlueString,
		},
	}
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.ReplaceAll(v, "%", "%%"))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(a ColorAttr, s string) string {
	return c.Get(a)(s)
}

func (c *Colors) Get(a ColorAttr) func(string, ...any) string {
	f := c.Map[a]
	if f == nil {
		return c.Default
	}
	return f
}
