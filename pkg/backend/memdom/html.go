package memdom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice-dev/lattice/pkg/vdom"
)

// voidElements have no children and no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// booleanAttrs render as bare attributes when true.
var booleanAttrs = map[string]bool{
	"checked": true, "disabled": true, "selected": true,
	"readonly": true, "required": true, "autofocus": true,
	"multiple": true, "hidden": true, "open": true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// AttrString converts an attribute value to its serialized form. The
// second return is false for values with no HTML representation, such
// as event handler funcs and explicit false booleans.
func AttrString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if !v {
			return "", false
		}
		return "", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case map[string]string:
		// Normalized style maps.
		return vdom.StyleToString(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		rt := fmt.Sprintf("%T", value)
		if strings.HasPrefix(rt, "func") {
			return "", false
		}
		return fmt.Sprintf("%v", value), true
	}
}

// escapeHTML escapes text content for HTML output.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes attribute values, additionally encoding whitespace
// control characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
