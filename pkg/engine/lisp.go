package engine

import (
	"fmt"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source rewriting
// ---------------------------------------------------------------------------

// kwPrefix marks a string literal that was written as a :keyword.
const kwPrefix = "__kw_"

// preprocessSource rewrites procedure source into text the zygomys reader
// accepts. Keywords such as :scale become the string "__kw_scale", so they
// never collide with names bound by def. Hyphens joining two identifier
// characters become underscores (rgb-to-hsv reads as rgb_to_hsv, while
// (- a b) keeps its minus). Lisp ; comments become zygomys // comments.
// String literals pass through untouched.
func preprocessSource(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			end := quotedEnd(src, i)
			out.WriteString(src[i:end])
			i = end
		case c == ';':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			out.WriteString("//")
			out.WriteString(strings.TrimLeft(src[i:end], ";"))
			i = end
		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			end := i + 1
			for end < len(src) && isKeywordChar(src[end]) {
				end++
			}
			out.WriteString(strconv.Quote(kwPrefix + src[i+1:end]))
			i = end
		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// quotedEnd returns the index just past the literal opening at start.
// Double-quoted literals honor backslash escapes; raw literals do not.
func quotedEnd(src string, start int) int {
	q := src[start]
	for i := start + 1; i < len(src); i++ {
		switch {
		case q == '"' && src[i] == '\\':
			i++
		case src[i] == q:
			return i + 1
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// Port keywords keep their hyphens (:value-1).
func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

// ---------------------------------------------------------------------------
// Call arguments
// ---------------------------------------------------------------------------

// keyword reports the name of a rewritten :keyword literal.
func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return strings.TrimPrefix(str.S, kwPrefix), true
}

// callArgs is a builtin's argument list split into positional values and
// :name value pairs.
type callArgs struct {
	named      map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits args. Every keyword must be followed by its value and
// may appear once.
func parseArgs(args []zygo.Sexp) (callArgs, error) {
	ca := callArgs{named: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keyword(args[i])
		if !ok {
			ca.positional = append(ca.positional, args[i])
			continue
		}
		if i+1 == len(args) {
			return callArgs{}, fmt.Errorf("keyword :%s has no value", name)
		}
		if _, dup := ca.named[name]; dup {
			return callArgs{}, fmt.Errorf("keyword :%s given twice", name)
		}
		i++
		ca.named[name] = args[i]
	}
	return ca, nil
}

// toNumber reads an integer or float literal.
func toNumber(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toIndex reads a non-negative whole number, such as a parameter or port
// index.
func toIndex(s zygo.Sexp) (int, error) {
	f, err := toNumber(s)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("expected index, got %s", s.SexpString(nil))
	}
	return int(f), nil
}

// toName reads a string or a keyword, so (output "Diffuse" x) and
// (port x :hue) both name things.
func toName(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected name, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}
