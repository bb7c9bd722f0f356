package suffix

import (
	"fmt"
	"regexp"
	"strings"
)

// Purpose is a render intent decoded from a name.
type Purpose string

const (
	NoPurpose Purpose = ""
	Render    Purpose = "render"
	Proxy     Purpose = "proxy"
	Guide     Purpose = "guide"
)

// Purposes lists the closed set of purposes in canonical order.
var Purposes = []Purpose{Render, Proxy, Guide}

func (p Purpose) String() string {
	if p == NoPurpose {
		return "none"
	}
	return string(p)
}

// Valid reports whether p is one of Purposes.
func (p Purpose) Valid() bool {
	return p == Render || p == Proxy || p == Guide
}

// DefaultVariant is the tag given to a bare _VARIANT marker.
const DefaultVariant = "1"

var (
	payloadRe = regexp.MustCompile(`(?i)_PAYLOAD$`)
	purposeRe = regexp.MustCompile(`(?i)_(RENDER|PROXY|GUIDE)$`)
	variantRe = regexp.MustCompile(`(?i)_VARIANT([A-Za-z0-9]*)$`)
)

// Parts is a decoded name.
type Parts struct {
	Name    string
	Base    string
	Purpose Purpose
	// Variant is the variant tag, empty when the name carries no marker.
	Variant string
	Payload bool
}

// HasVariant reports whether the name carried a variant marker.
func (p Parts) HasVariant() bool { return p.Variant != "" }

// Plain reports whether the name carried no marker at all.
func (p Parts) Plain() bool {
	return p.Purpose == NoPurpose && p.Variant == "" && !p.Payload
}

func (p Parts) String() string {
	v := p.Variant
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s base=%s purpose=%s variant=%s payload=%t", p.Name, p.Base, p.Purpose, v, p.Payload)
}

// Parse decodes name. Each marker is stripped at most once, so parsing the
// resulting base again yields it unchanged unless the base itself ends in a
// marker of an earlier step.
//
// A variant tag is letters and digits only. Underscores end it, so
// "Lamp_VARIANT_A" carries no variant marker and is a plain name.
func Parse(name string) Parts {
	res := Parts{Name: name, Base: name}
	if loc := payloadRe.FindStringIndex(res.Base); loc != nil {
		res.Payload = true
		res.Base = res.Base[:loc[0]]
	}
	if m := purposeRe.FindStringSubmatchIndex(res.Base); m != nil {
		res.Purpose = Purpose(strings.ToLower(res.Base[m[2]:m[3]]))
		res.Base = res.Base[:m[0]]
	}
	if m := variantRe.FindStringSubmatchIndex(res.Base); m != nil {
		res.Variant = res.Base[m[2]:m[3]]
		if res.Variant == "" {
			res.Variant = DefaultVariant
		}
		res.Base = res.Base[:m[0]]
	}
	return res
}

// Sanitize returns name with every character outside [A-Za-z0-9_]
// replaced by '_'. A leading digit gets a '_' prefix and an empty result
// becomes "prim".
func Sanitize(name string) string {
	b := &strings.Builder{}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	res := b.String()
	if res == "" {
		return "prim"
	}
	if res[0] >= '0' && res[0] <= '9' {
		res = "_" + res
	}
	return res
}
