package brep

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/zimin2020/polarbear/pkg/kernel/csg"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms solid-script source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This keeps keyword tokens inert instead of tripping undefined-symbol
//     errors, so a misplaced keyword surfaces as a clean type error.
//
//  2. Kebab-case to underscore: base-plate -> base_plate
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Comment conversion: ; line comments become // comments, which is
//     what zygomys expects.
//
// All transformations respect string literal boundaries and preserve
// newlines, so error line numbers refer to the original source.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"' || b[i] == '`':
			out, i = copyQuoted(out, b, i)

		case b[i] == ';':
			// ; line comment becomes a // comment.
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			// := assignment passes through untouched.
			out = append(out, ':', '=')
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			// :keyword becomes the string "__kw_keyword".
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]):
			// Hyphen between identifier characters is kebab-case, not a
			// minus operator.
			out = append(out, '_')
			i++

		default:
			out = append(out, b[i])
			i++
		}
	}
	return string(out)
}

// copyQuoted copies the quoted literal starting at b[i] verbatim, honoring
// backslash escapes inside double quotes (backtick literals are raw). It
// returns the output and the index past the closing quote.
func copyQuoted(out, b []byte, i int) ([]byte, int) {
	quote := b[i]
	out = append(out, b[i])
	i++
	for i < len(b) && b[i] != quote {
		if quote == '"' && b[i] == '\\' && i+1 < len(b) {
			out = append(out, b[i], b[i+1])
			i += 2
			continue
		}
		out = append(out, b[i])
		i++
	}
	if i < len(b) {
		out = append(out, b[i])
		i++
	}
	return out, i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a csg.Solid so it can be passed between builtins.
type sexpSolid struct {
	solid csg.Solid
	desc  string // human-readable description for error messages
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %s)", s.desc)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a csg.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (csg.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// positiveFloat extracts a float64 that must be strictly positive.
func positiveFloat(s zygo.Sexp, what string) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", what, f)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the solid-script builtins into a zygomys
// environment. Primitive and boolean builtins construct solids through b;
// the part builtin appends named solids to m in declaration order.
//
// Source code must be preprocessed with preprocessSource() before evaluation.
func registerBuiltins(env *zygo.Zlisp, b csg.Builder, m *Model) {

	// -----------------------------------------------------------------------
	// (box x y z) -- axis-aligned box centered at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires 3 dimensions, got %d", len(args))
		}
		x, err := positiveFloat(args[0], "box: x")
		if err != nil {
			return zygo.SexpNull, err
		}
		y, err := positiveFloat(args[1], "box: y")
		if err != nil {
			return zygo.SexpNull, err
		}
		z, err := positiveFloat(args[2], "box: z")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{
			solid: b.Box(x, y, z),
			desc:  fmt.Sprintf("box %gx%gx%g", x, y, z),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere r) -- sphere centered at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius, got %d arguments", len(args))
		}
		r, err := positiveFloat(args[0], "sphere: radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{
			solid: b.Sphere(r),
			desc:  fmt.Sprintf("sphere r=%g", r),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder h r) -- Z-axis cylinder centered at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires height and radius, got %d arguments", len(args))
		}
		h, err := positiveFloat(args[0], "cylinder: height")
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := positiveFloat(args[1], "cylinder: radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{
			solid: b.Cylinder(h, r),
			desc:  fmt.Sprintf("cylinder h=%g r=%g", h, r),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) -- union of two or more solids
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 solids, got %d", len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: argument 1: %w", err)
		}
		for i := 1; i < len(args); i++ {
			s, err := toSolid(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: argument %d: %w", i+1, err)
			}
			acc = b.Union(acc, s)
		}
		return &sexpSolid{solid: acc, desc: "union"}, nil
	})

	// -----------------------------------------------------------------------
	// (difference a b ...) -- first solid minus the rest
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("difference requires at least 2 solids, got %d", len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: argument 1: %w", err)
		}
		for i := 1; i < len(args); i++ {
			s, err := toSolid(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("difference: argument %d: %w", i+1, err)
			}
			acc = b.Difference(acc, s)
		}
		return &sexpSolid{solid: acc, desc: "difference"}, nil
	})

	// -----------------------------------------------------------------------
	// (intersection a b ...) -- intersection of two or more solids
	// -----------------------------------------------------------------------
	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("intersection requires at least 2 solids, got %d", len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersection: argument 1: %w", err)
		}
		for i := 1; i < len(args); i++ {
			s, err := toSolid(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("intersection: argument %d: %w", i+1, err)
			}
			acc = b.Intersection(acc, s)
		}
		return &sexpSolid{solid: acc, desc: "intersection"}, nil
	})

	// -----------------------------------------------------------------------
	// (translate s x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and 3 offsets, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		var d [3]float64
		for i := 0; i < 3; i++ {
			f, err := toFloat64(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("translate: offset %d: %w", i+1, err)
			}
			d[i] = f
		}
		return &sexpSolid{
			solid: b.Translate(s, d[0], d[1], d[2]),
			desc:  "translate",
		}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate s x y z) -- Euler angles in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a solid and 3 angles, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		var deg [3]float64
		for i := 0; i < 3; i++ {
			f, err := toFloat64(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: angle %d: %w", i+1, err)
			}
			deg[i] = f
		}
		return &sexpSolid{
			solid: b.Rotate(s, deg[0], deg[1], deg[2]),
			desc:  "rotate",
		}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name" solid) -- register a named part; returns the solid so it
	// can be bound to a variable and reused in later expressions.
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("part requires a name and a solid, got %d arguments", len(args))
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		if partName == "" {
			return zygo.SexpNull, fmt.Errorf("part: name must not be empty")
		}
		for _, p := range m.Parts {
			if p.Name == partName {
				return zygo.SexpNull, fmt.Errorf("part: duplicate part name %q", partName)
			}
		}
		s, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part %q: %w", partName, err)
		}

		m.Parts = append(m.Parts, Part{Name: partName, Solid: s})
		return args[1], nil
	})
}
