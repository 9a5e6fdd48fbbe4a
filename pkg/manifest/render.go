package manifest

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// renderString renders s as a TOML basic string
func renderString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func renderStringArray(items []string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = renderString(it)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func renderBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func renderKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		if !isBareKeyChar(k[i]) {
			return renderString(k)
		}
	}
	return k
}

func renderPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = renderKey(p)
	}
	return strings.Join(parts, ".")
}

// decodeValue decodes a single raw TOML value
func decodeValue(raw string) (interface{}, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte("v = "+raw), &doc); err != nil {
		return nil, err
	}
	return doc["v"], nil
}

// sameValue reports whether two raw values decode to the same data, so an
// unchanged value keeps its original spelling.
func sameValue(a, b string) bool {
	va, errA := decodeValue(a)
	vb, errB := decodeValue(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
