package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/source"
)

func execute(t *testing.T, ex *Executor, src string) (*Result, error) {
	t.Helper()
	f, err := source.Parse(src)
	require.NoError(t, err)
	classes := f.Classes()
	require.NotEmpty(t, classes)
	return ex.Execute(f, classes[0])
}

func TestExecuteLiteralAndComputedFields(t *testing.T) {
	src := `PREFIX = "qc"

class QualityControl:
    """QC."""
    name = PREFIX + "_filtering"
    depends_on = ["scanpy"]
    default_params = {"min_genes": 200}
    count = len(depends_on)
    steps = [{"id": i + 1} for i in range(2)]

    @staticmethod
    def run(adata_path, **kwargs):
        return open(adata_path).read()
`
	res, err := execute(t, &Executor{}, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "depends_on", "default_params", "count", "steps", "run"}, res.Names)
	assert.Equal(t, "qc_filtering", res.Fields["name"])
	assert.Equal(t, module.List{"scanpy"}, res.Fields["depends_on"])
	assert.Equal(t, int64(1), res.Fields["count"])

	steps, ok := res.Fields["steps"].(module.List)
	require.True(t, ok)
	require.Len(t, steps, 2)
	id, _ := steps[1].(*module.Dict).Get("id")
	assert.Equal(t, int64(2), id)

	params, ok := res.Fields["default_params"].(*module.Dict)
	require.True(t, ok)
	v, _ := params.Get("min_genes")
	assert.Equal(t, int64(200), v)

	assert.True(t, res.IsCallable("run"))
	assert.False(t, res.IsCallable("name"))
	assert.False(t, res.IsCallable("missing"))
	assert.Equal(t, module.Callable{Name: "run"}, res.Fields["run"])
}

func TestExecuteNonCallableEntryPoint(t *testing.T) {
	tests := map[string]string{
		"property": "class S:\n    name = \"s\"\n    @property\n    def run(self):\n        return 1\n",
		"rebound":  "class S:\n    name = \"s\"\n    def run(self):\n        pass\n    run = None\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := execute(t, &Executor{}, src)
			require.NoError(t, err)
			_, bound := res.Lookup("run")
			assert.True(t, bound)
			assert.False(t, res.IsCallable("run"))
		})
	}
}

func TestExecuteRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  string
		line int
	}{
		{"division", "class Broken:\n    name = \"x\"\n    ratio = 1 // 0\n", "EvalError", 3},
		{"undefined", "class Broken:\n    name = undefined_thing\n", "NameError", 2},
		{"bad operands", "class Broken:\n    name = \"x\"\n\n    total = name + 1\n", "EvalError", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, &Executor{}, tt.src)
			require.Error(t, err)
			var execErr *ExecError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, tt.typ, execErr.Type)
			assert.Equal(t, tt.line, execErr.Line)
			assert.NotEmpty(t, execErr.Msg)
		})
	}
}

func TestExecuteImportsAreInert(t *testing.T) {
	src := "import numpy as np\nfrom os import path\n\nclass S:\n    name = \"s\"\n    shape = np.zeros(3).shape\n    where = path.join(\"a\", \"b\")\n"
	res, err := execute(t, &Executor{}, src)
	require.NoError(t, err)
	assert.True(t, IsUnknown(res.Fields["shape"]))
	assert.True(t, IsUnknown(res.Fields["where"]))
	assert.False(t, IsUnknown(res.Fields["name"]))
}

func TestExecutePythonOnlyExpressionsAreUnknown(t *testing.T) {
	src := `VERSION = "1"

class S:
    name = f"qc-{VERSION}"
    label = "a" if VERSION is not None else "b"
    power = {"n": 2 ** 10}
    tags = sorted({"b", "a"})
    merged = {**{"a": 1}}
    ordered = sorted(["b", "a"])
`
	res, err := execute(t, &Executor{}, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "label", "power", "tags", "merged", "ordered"}, res.Names)
	for _, name := range res.Names[:5] {
		assert.True(t, IsUnknown(res.Fields[name]), name)
	}
	assert.Equal(t, module.List{"a", "b"}, res.Fields["ordered"])
}

func TestExecuteStepBudget(t *testing.T) {
	src := "class S:\n    name = \"s\"\n    big = [i for i in range(1000000)]\n"
	_, err := execute(t, &Executor{MaxSteps: 1000}, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestExecuteEmptyBody(t *testing.T) {
	res, err := execute(t, &Executor{}, "class Empty:\n    pass\n")
	require.NoError(t, err)
	assert.Empty(t, res.Fields)
}

func TestExecuteLiteralKinds(t *testing.T) {
	src := "class S:\n    tags = (\"a\", \"b\")\n    flags = {1, 2}\n    raw = b\"\\x00\"\n    big = 12345678901234567890123\n    nothing = None\n"
	res, err := execute(t, &Executor{}, src)
	require.NoError(t, err)
	assert.Equal(t, module.Tuple{"a", "b"}, res.Fields["tags"])
	assert.Len(t, res.Fields["flags"], 2)
	assert.Equal(t, module.Bytes{0}, res.Fields["raw"])
	assert.Equal(t, "int", module.TypeName(res.Fields["big"]))
	assert.Nil(t, res.Fields["nothing"])
}
