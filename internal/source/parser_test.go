package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skillSrc = `"""Module docstring."""
import scanpy as sc
from typing import (Any,
                    Dict)


class QualityControl:
    """QC filtering."""

    name = "qc_filtering"
    version: str = "1.2"
    depends_on = ["scanpy"]
    default_params = {"min_genes": 200, **extra}
    threshold = compute(1, key=2)[0]
    a = b = 3

    @staticmethod
    def run(adata_path: str, *args, **kwargs) -> dict:
        if not adata_path:
            raise ValueError("no path")
        for i, (k, v) in enumerate(kwargs.items()):
            print(f"{k}={v}", end="")
        with open(adata_path) as fh, open("x") as gh:
            data = [line for line in fh if line]
        try:
            total = sum(x ** 2 for x in range(10))
        except (KeyError, ValueError) as exc:
            total = -1
        finally:
            pass
        return {"total": total, "data": data[1:]}

    @property
    def label(self):
        return self.name


class Helper:
    pass
`

func TestParseSkill(t *testing.T) {
	f, err := Parse(skillSrc)
	require.NoError(t, err)

	require.NotNil(t, f.Doc)
	classes := f.Classes()
	require.Len(t, classes, 2)

	c := classes[0]
	assert.Equal(t, "QualityControl", c.Name)
	require.NotNil(t, c.Doc)
	doc, err := c.Doc.Value()
	require.NoError(t, err)
	assert.Equal(t, "QC filtering.", doc)

	var fields []string
	var methods []*FuncDef
	for _, s := range c.Body {
		switch st := s.(type) {
		case *AssignStmt:
			for _, target := range st.Targets {
				if id, ok := target.(*Ident); ok {
					fields = append(fields, id.Name)
				}
			}
		case *FuncDef:
			methods = append(methods, st)
		}
	}
	assert.Equal(t, []string{"name", "version", "depends_on", "default_params", "threshold", "a", "b"}, fields)

	require.Len(t, methods, 2)
	run := methods[0]
	assert.Equal(t, "run", run.Name)
	require.Len(t, run.Decorators, 1)
	assert.Equal(t, "staticmethod", f.Segment(run.Decorators[0]))
	require.Len(t, run.Params, 3)
	assert.Equal(t, ParamVarArgs, run.Params[1].Kind)
	assert.Equal(t, ParamKwArgs, run.Params[2].Kind)
	assert.NotNil(t, run.Params[0].Annotation)
	assert.NotNil(t, run.Returns)
	assert.Equal(t, "label", methods[1].Name)

	imports := f.Stmts[1].(*ImportStmt)
	assert.Equal(t, []string{"sc"}, imports.Names)
	from := f.Stmts[2].(*ImportStmt)
	assert.Equal(t, "typing", from.Module)
	assert.Equal(t, []string{"Any", "Dict"}, from.Names)
}

func TestParseSegments(t *testing.T) {
	src := "class A:\n    depends_on = \"scanpy\"  # dep\n    steps = [\n        {\"id\": 1},\n    ]\n"
	f, err := Parse(src)
	require.NoError(t, err)

	body := f.Classes()[0].Body
	dep := body[0].(*AssignStmt)
	assert.Equal(t, `"scanpy"`, f.Segment(dep.Value))
	assert.Equal(t, 2, f.Line(dep))

	steps := body[1].(*AssignStmt)
	list, ok := steps.Value.(*ListExpr)
	require.True(t, ok)
	require.Len(t, list.Elts, 1)
	d, ok := list.Elts[0].(*DictExpr)
	require.True(t, ok)
	assert.Equal(t, `{"id": 1}`, f.Segment(d))
	assert.Equal(t, "1", f.Segment(d.Entries[0].Value))
}

func TestParseExpressions(t *testing.T) {
	valid := []string{
		"x = lambda a, b=1: a if b else -a\n",
		"x = not a and b or c in d and e is not f\n",
		"x = {1, 2, *rest}\n",
		"x = {k: v for k, v in items}\n",
		"x = (yield)\n",
		"x = a[1:2, ::3]\n",
		"x = (y := 10)\n",
		"x = 'a' 'b' \"c\"\n",
		"x = ~a | b ^ c & d << 2 >> 1 + 3 * 4 // 5 % 6 @ m ** -2\n",
		"x = await thing()\n",
		"x = (1,)\n",
		"x, *y = 1, 2, 3\n",
		"x = ...\n",
		"x += 1\n",
		"obj.attr = 1; del obj.attr\n",
		"assert x, 'message'\n",
		"global a, b\n",
		"match command:\n    case [x]:\n        pass\n",
		"async def f():\n    async with a as b:\n        await b\n    async for c in d:\n        yield c\n",
		"with (open(a) as b, open(c) as d):\n    pass\n",
		"while True:\n    break\nelse:\n    pass\n",
		"if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n",
		"try:\n    pass\nexcept* ValueError:\n    pass\n",
		"def f(a, /, b, *, c: int = 3, **kw): return a\n",
		"class A(Base, metaclass=Meta): pass\n",
		"@decorator.with_args(1)\nclass A:\n    pass\n",
		"x: int\n",
		"raise ValueError('x') from err\n",
		"from . import sibling\n",
		"from ..pkg.mod import *\n",
	}
	for _, src := range valid {
		_, err := Parse(src)
		assert.NoError(t, err, src)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
		msg  string
	}{
		{"class A:\n    x = \n", 2, "invalid syntax"},
		{"class A:\nx = 1\n", 2, "expected an indented block"},
		{"  x = 1\n", 1, "unexpected indent"},
		{"class A:\n    def run(self):\n        return x +\n", 3, "invalid syntax"},
		{"1 = x\n", 1, "cannot assign to literal"},
		{"f() = 3\n", 1, "cannot assign to function call"},
		{"x = 'a' b'b'\n", 1, "cannot mix bytes"},
		{"else:\n    pass\n", 1, "invalid syntax"},
		{"try:\n    pass\nx = 1\n", 3, "invalid syntax"},
		{"class A\n    pass\n", 1, "invalid syntax"},
		{"@dec\nx = 1\n", 2, "invalid syntax"},
		{"x = [1, 2\n", 1, "never closed"},
		{"x = 1\ny = \"\xff\"\n", 2, "invalid UTF-8"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.src)
		require.Error(t, err, tt.src)
		var se *SyntaxError
		require.ErrorAs(t, err, &se, tt.src)
		assert.Equal(t, tt.line, se.Line, tt.src)
		assert.Contains(t, se.Msg, tt.msg, tt.src)
	}
}

func TestParseSingleLineSuite(t *testing.T) {
	f, err := Parse("class A: x = 1; y = 2\n")
	require.NoError(t, err)
	body := f.Classes()[0].Body
	require.Len(t, body, 2)
	assert.Nil(t, f.Classes()[0].Doc)
}
