package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of property value variants.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindColor
	KindStringList
)

// Value is a tagged-variant property value, resolved once at parse time.
type Value struct {
	Kind  Kind
	Str   string
	Num   float64
	Bool  bool
	Color [3]float64
	List  []string
}

func String(s string) Value            { return Value{Kind: KindString, Str: s} }
func Number(f float64) Value           { return Value{Kind: KindNumber, Num: f} }
func Bool(b bool) Value                { return Value{Kind: KindBool, Bool: b} }
func Color(r, g, b float64) Value      { return Value{Kind: KindColor, Color: [3]float64{r, g, b}} }
func StringList(items ...string) Value { return Value{Kind: KindStringList, List: items} }

// Equal compares two values, variant tag included.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindColor:
		return v.Color == o.Color
	case KindStringList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}

// TypeToken returns the declared-type keyword for this variant.
func (v Value) TypeToken() string {
	switch v.Kind {
	case KindNumber:
		return "float"
	case KindBool:
		return "bool"
	case KindColor:
		return "color3f"
	case KindStringList:
		return "string[]"
	default:
		return "string"
	}
}

// SourceText renders the value as a scene-text literal.
func (v Value) SourceText() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindColor:
		return fmt.Sprintf("(%s, %s, %s)",
			strconv.FormatFloat(v.Color[0], 'g', -1, 64),
			strconv.FormatFloat(v.Color[1], 'g', -1, 64),
			strconv.FormatFloat(v.Color[2], 'g', -1, 64))
	case KindStringList:
		quoted := make([]string, len(v.List))
		for i, s := range v.List {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return strconv.Quote(v.Str)
	}
}

// Display renders the value for humans and conflict records: strings bare,
// everything else in source form.
func (v Value) Display() string {
	if v.Kind == KindString {
		return v.Str
	}
	return v.SourceText()
}

// ParseLiteral infers a Value from a scene-text literal, using the declared
// type token as a hint when the literal shape alone is ambiguous.
func ParseLiteral(typeToken, lit string) Value {
	s := strings.TrimSpace(lit)
	switch {
	case strings.HasPrefix(s, `"`):
		if u, err := strconv.Unquote(s); err == nil {
			return String(u)
		}
		return String(strings.Trim(s, `"`))
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(strings.Trim(s, "()"), ",")
		if len(parts) == 3 {
			var c [3]float64
			ok := true
			for i, p := range parts {
				f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					ok = false
					break
				}
				c[i] = f
			}
			if ok {
				return Value{Kind: KindColor, Color: c}
			}
		}
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := strings.TrimSpace(strings.Trim(s, "[]"))
		if inner == "" {
			return StringList()
		}
		var items []string
		for _, p := range strings.Split(inner, ",") {
			p = strings.TrimSpace(p)
			if u, err := strconv.Unquote(p); err == nil {
				items = append(items, u)
			} else {
				items = append(items, strings.Trim(p, `"`))
			}
		}
		return StringList(items...)
	case s == "true" || s == "false":
		return Bool(s == "true")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && typeToken != "string" {
		return Number(f)
	}
	return String(s)
}

// Property is one declared key/value on a node.
type Property struct {
	Name     string
	Value    Value
	Custom   bool
	TypeDecl string // declared type token as written in source, "" if synthesized
}

// TypeToken returns the declared type if present, else the variant's token.
func (p Property) TypeToken() string {
	if p.TypeDecl != "" {
		return p.TypeDecl
	}
	return p.Value.TypeToken()
}
