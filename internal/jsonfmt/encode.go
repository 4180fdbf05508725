// Package jsonfmt renders JSON text with configurable indentation, separators,
// key ordering and ASCII escaping.
//
// The layout follows CPython's json.dumps, so files written here are
// byte-for-byte compatible with existing files.json dumps.
package jsonfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Options controls the text layout.
type Options struct {
	// Indent is the number of spaces per nesting level. A negative value
	// keeps the whole document on one line.
	Indent      int
	ItemSep     string
	KeySep      string
	SortKeys    bool
	EnsureASCII bool
}

var (
	// Pretty is the layout of files.json. The item separator carries a space
	// before the comma; existing dumps depend on it.
	Pretty = Options{Indent: 4, ItemSep: " ,", KeySep: ": ", SortKeys: true, EnsureASCII: true}

	// PrettyStandard is Pretty with the usual "," item separator.
	PrettyStandard = Options{Indent: 4, ItemSep: ",", KeySep: ": ", SortKeys: true, EnsureASCII: true}

	// Minified is the densest sorted layout.
	Minified = Options{Indent: -1, ItemSep: ",", KeySep: ":", SortKeys: true, EnsureASCII: true}

	// MinifiedUnsorted keeps object members in their original order.
	MinifiedUnsorted = Options{Indent: -1, ItemSep: ",", KeySep: ":", EnsureASCII: true}
)

// UnsupportedTypeError is returned when a value has no JSON rendering.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("jsonfmt: unsupported type %T", e.Value)
}

// Marshal renders v using opts.
func Marshal(v any, opts Options) ([]byte, error) {
	e := &encoder{opts: opts}
	if err := e.encode(v, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// Encode renders v using opts and writes it to w.
func Encode(w io.Writer, v any, opts Options) error {
	data, err := Marshal(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type encoder struct {
	buf  bytes.Buffer
	opts Options
}

func (e *encoder) encode(v any, depth int) error {
	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		e.buf.WriteString(strconv.FormatBool(x))
	case string:
		e.writeString(x)
	case json.Number:
		return e.writeNumber(x)
	case int:
		e.buf.WriteString(strconv.Itoa(x))
	case int64:
		e.buf.WriteString(strconv.FormatInt(x, 10))
	case int32:
		e.buf.WriteString(strconv.FormatInt(int64(x), 10))
	case uint64:
		e.buf.WriteString(strconv.FormatUint(x, 10))
	case float64:
		e.buf.WriteString(FormatFloat(x))
	case float32:
		e.buf.WriteString(FormatFloat(float64(x)))
	case []any:
		return e.writeList(len(x), depth, func(i int) error { return e.encode(x[i], depth+1) })
	case []string:
		return e.writeList(len(x), depth, func(i int) error { return e.encode(x[i], depth+1) })
	case map[string]any:
		members := make([]Member, 0, len(x))
		for k, val := range x {
			members = append(members, Member{Key: k, Value: val})
		}
		// Map iteration order is random, so maps are always emitted sorted.
		sortMembers(members)
		return e.writeObject(members, depth)
	case *Object:
		members := x.Members()
		if e.opts.SortKeys {
			sortMembers(members)
		}
		return e.writeObject(members, depth)
	default:
		return &UnsupportedTypeError{Value: v}
	}
	return nil
}

func sortMembers(members []Member) {
	sort.SliceStable(members, func(i, j int) bool { return members[i].Key < members[j].Key })
}

func (e *encoder) writeList(n, depth int, item func(i int) error) error {
	if n == 0 {
		e.buf.WriteString("[]")
		return nil
	}
	e.buf.WriteByte('[')
	for i := range n {
		if i > 0 {
			e.buf.WriteString(e.opts.ItemSep)
		}
		e.newline(depth + 1)
		if err := item(i); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) writeObject(members []Member, depth int) error {
	if len(members) == 0 {
		e.buf.WriteString("{}")
		return nil
	}
	e.buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			e.buf.WriteString(e.opts.ItemSep)
		}
		e.newline(depth + 1)
		e.writeString(m.Key)
		e.buf.WriteString(e.opts.KeySep)
		if err := e.encode(m.Value, depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) newline(depth int) {
	if e.opts.Indent < 0 {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(" ", depth*e.opts.Indent))
}

func (e *encoder) writeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch r {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		default:
			if r < 0x20 || (e.opts.EnsureASCII && r > 0x7e) {
				e.writeEscapedRune(r)
			} else {
				e.buf.WriteRune(r)
			}
		}
	}
	e.buf.WriteByte('"')
}

func (e *encoder) writeEscapedRune(r rune) {
	if r > 0xffff {
		r1, r2 := utf16.EncodeRune(r)
		fmt.Fprintf(&e.buf, `\u%04x\u%04x`, r1, r2)
		return
	}
	fmt.Fprintf(&e.buf, `\u%04x`, r)
}

func (e *encoder) writeNumber(n json.Number) error {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if s == "" || s == "-" || strings.Trim(strings.TrimPrefix(s, "-"), "0123456789") != "" {
			return fmt.Errorf("jsonfmt: invalid number literal %q", s)
		}
		if s == "-0" {
			s = "0"
		}
		e.buf.WriteString(s)
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals parse to ±Inf or ±0, which is what gets rendered.
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return fmt.Errorf("jsonfmt: invalid number literal %q", s)
		}
	}
	e.buf.WriteString(FormatFloat(f))
	return nil
}

// FormatFloat renders f as the shortest round-trip decimal, switching to
// exponent notation below 1e-4 and from 1e16 upwards. Whole values keep a
// trailing ".0".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expPart)

	neg := strings.HasPrefix(mantissa, "-")
	digits := strings.Replace(strings.TrimPrefix(mantissa, "-"), ".", "", 1)

	var out string
	switch {
	case exp < -4 || exp >= 16:
		out = digits[:1]
		if len(digits) > 1 {
			out += "." + digits[1:]
		}
		sign := "+"
		if exp < 0 {
			sign = "-"
			exp = -exp
		}
		out += fmt.Sprintf("e%s%02d", sign, exp)
	case exp < 0:
		out = "0." + strings.Repeat("0", -exp-1) + digits
	default:
		intLen := exp + 1
		if len(digits) <= intLen {
			out = digits + strings.Repeat("0", intLen-len(digits)) + ".0"
		} else {
			out = digits[:intLen] + "." + digits[intLen:]
		}
	}

	if neg {
		out = "-" + out
	}
	return out
}
