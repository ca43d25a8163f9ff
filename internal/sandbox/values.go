package sandbox

import (
	"fmt"
	"math/big"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/thruflo/stato/internal/module"
)

// unknownType is the runtime type name of values the sandbox cannot know,
// such as anything obtained from an import.
const unknownType = "unknown"

// stub stands in for imported modules, nested classes and the results of
// calling them. Every operation on a stub yields another stub.
type stub struct{ name string }

var (
	_ starlark.Callable   = (*stub)(nil)
	_ starlark.HasAttrs   = (*stub)(nil)
	_ starlark.HasBinary  = (*stub)(nil)
	_ starlark.Mapping    = (*stub)(nil)
	_ starlark.HasUnary   = (*stub)(nil)
	_ starlark.Value      = (*opaque)(nil)
	_ starlark.Comparable = (*stub)(nil)
)

func (s *stub) String() string        { return "<" + s.name + ">" }
func (s *stub) Type() string          { return unknownType }
func (s *stub) Freeze()               {}
func (s *stub) Truth() starlark.Bool  { return starlark.True }
func (s *stub) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", s.name) }
func (s *stub) Name() string          { return s.name }
func (s *stub) AttrNames() []string   { return nil }

func (s *stub) Attr(name string) (starlark.Value, error) {
	return &stub{name: s.name + "." + name}, nil
}

func (s *stub) CallInternal(*starlark.Thread, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return &stub{name: s.name + "()"}, nil
}

func (s *stub) Binary(syntax.Token, starlark.Value, starlark.Side) (starlark.Value, error) {
	return s, nil
}

func (s *stub) Unary(syntax.Token) (starlark.Value, error) { return s, nil }

func (s *stub) Get(starlark.Value) (starlark.Value, bool, error) { return s, true, nil }

func (s *stub) CompareSameType(op syntax.Token, _ starlark.Value, _ int) (bool, error) {
	return op == syntax.EQL || op == syntax.LE || op == syntax.GE, nil
}

// opaque is a non-callable value with a fixed type name, used for
// properties and for literals Starlark has no type for.
type opaque struct {
	typ  string
	repr string
}

func (o *opaque) String() string        { return o.repr }
func (o *opaque) Type() string          { return o.typ }
func (o *opaque) Freeze()               {}
func (o *opaque) Truth() starlark.Bool  { return starlark.True }
func (o *opaque) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", o.typ) }

// method returns the stand-in bound to a method name. Calling it yields an
// unknown value; the body never runs.
func method(name string) starlark.Value {
	return starlark.NewBuiltin(name, func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
		return &stub{name: name + "()"}, nil
	})
}

func property(name string) starlark.Value {
	return &opaque{typ: "property", repr: "<property " + name + ">"}
}

// toStarlark converts a literal field value into a Starlark value.
func toStarlark(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(x), nil
	case bool:
		return starlark.Bool(x), nil
	case int64:
		return starlark.MakeInt64(x), nil
	case *big.Int:
		return starlark.MakeBigInt(x), nil
	case float64:
		return starlark.Float(x), nil
	case module.Bytes:
		return starlark.Bytes(x), nil
	case module.List:
		elems, err := toStarlarkAll(x)
		if err != nil {
			return nil, err
		}
		return starlark.NewList(elems), nil
	case module.Tuple:
		elems, err := toStarlarkAll(x)
		if err != nil {
			return nil, err
		}
		return starlark.Tuple(elems), nil
	case module.Set:
		set := starlark.NewSet(len(x))
		for _, it := range x {
			sv, err := toStarlark(it)
			if err != nil {
				return nil, err
			}
			if err := set.Insert(sv); err != nil {
				return nil, err
			}
		}
		return set, nil
	case *module.Dict:
		d := starlark.NewDict(x.Len())
		for _, e := range x.Entries {
			k, err := toStarlark(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := toStarlark(e.Value)
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(k, val); err != nil {
				return nil, err
			}
		}
		return d, nil
	case module.Opaque:
		return &opaque{typ: x.Type, repr: x.Repr}, nil
	}
	return nil, fmt.Errorf("unsupported literal %T", v)
}

func toStarlarkAll(items []any) ([]starlark.Value, error) {
	out := make([]starlark.Value, len(items))
	for i, it := range items {
		v, err := toStarlark(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// maxDepth bounds conversion of self-referential containers.
const maxDepth = 64

// fromStarlark converts a runtime value into the module value model.
func fromStarlark(v starlark.Value, depth int) any {
	if depth > maxDepth {
		return module.Opaque{Type: v.Type(), Repr: "..."}
	}
	switch x := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.String:
		return string(x)
	case starlark.Bool:
		return bool(x)
	case starlark.Int:
		if n, ok := x.Int64(); ok {
			return n
		}
		return x.BigInt()
	case starlark.Float:
		return float64(x)
	case starlark.Bytes:
		return module.Bytes(x)
	case *starlark.List:
		out := make(module.List, x.Len())
		for i := 0; i < x.Len(); i++ {
			out[i] = fromStarlark(x.Index(i), depth+1)
		}
		return out
	case starlark.Tuple:
		out := make(module.Tuple, len(x))
		for i, it := range x {
			out[i] = fromStarlark(it, depth+1)
		}
		return out
	case *starlark.Set:
		out := module.Set{}
		iter := x.Iterate()
		defer iter.Done()
		var it starlark.Value
		for iter.Next(&it) {
			out = append(out, fromStarlark(it, depth+1))
		}
		return out
	case *starlark.Dict:
		d := module.NewDict()
		for _, kv := range x.Items() {
			d.Set(fromStarlark(kv[0], depth+1), fromStarlark(kv[1], depth+1))
		}
		return d
	case *stub:
		return module.Opaque{Type: unknownType, Repr: x.String()}
	case *opaque:
		return module.Opaque{Type: x.typ, Repr: x.repr}
	case starlark.Callable:
		return module.Callable{Name: x.Name()}
	}
	return module.Opaque{Type: v.Type(), Repr: v.String()}
}

// IsUnknown reports whether v came from an operation the sandbox could not
// evaluate, such as a call on an imported module.
func IsUnknown(v any) bool {
	o, ok := v.(module.Opaque)
	return ok && o.Type == unknownType
}
