package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/testutil"
)

func TestDecompileSkill(t *testing.T) {
	t.Parallel()

	md := Decompile(testutil.ValidQCSkill)

	assert.True(t, strings.HasPrefix(md, "# QualityControl\n\nQC filtering for scRNA-seq data.\n"))
	assert.Contains(t, md, "| Field | Value |")
	assert.Contains(t, md, "| name | 'qc_filtering' |")
	assert.Contains(t, md, "| depends_on | ['scanpy'] |")
	assert.Contains(t, md, "## Methods\n\n- `run(adata_path, **kwargs)`\n")
	assert.Contains(t, md, "## Lessons Learned\n\n- Cortex tissue: max_pct_mito=20 retains ~85% of cells\n- FFPE samples")
	assert.Contains(t, md, "## Source\n\n```python\nclass QualityControl:")

	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "| lessons_learned |") {
			cell := strings.TrimSuffix(strings.TrimPrefix(line, "| lessons_learned | "), " |")
			assert.Len(t, cell, 60)
			assert.True(t, strings.HasSuffix(cell, "..."))
		}
	}
}

func TestDecompileFallbacks(t *testing.T) {
	t.Parallel()

	md := Decompile("class (:\n")
	assert.True(t, strings.HasPrefix(md, "# Invalid Module\n\nSource has syntax errors.\n"))
	assert.Contains(t, md, "```python\nclass (:\n")

	md = Decompile("x = 1\n")
	assert.True(t, strings.HasPrefix(md, "# No Class Found\n"))
}

func TestDecompileShortNarrativeStaysInTable(t *testing.T) {
	t.Parallel()

	md := Decompile("class AnalysisState:\n    phase = \"qc\"\n    reflection = \"short\"\n")
	assert.Contains(t, md, "| reflection | 'short' |")
	assert.NotContains(t, md, "## Reflection")
	assert.NotContains(t, md, "## Methods")
}

func TestFromMarkdownRoundTrip(t *testing.T) {
	t.Parallel()

	src, res := New().FromMarkdown(Decompile(testutil.ValidPlan))
	assert.Equal(t, strings.TrimSpace(testutil.ValidPlan)+"\n", src)
	testutil.AssertValid(t, res)
	assert.Equal(t, module.KindPlan, res.Kind)
}

func TestFromMarkdownWithoutSource(t *testing.T) {
	t.Parallel()

	src, res := New().FromMarkdown("# SessionState\n\nNotes only.\n")
	assert.Equal(t, "class SessionState:\n    pass\n", src)
	require.NotNil(t, res)
	assert.Equal(t, module.KindMemory, res.Kind)
	testutil.AssertHasCode(t, res, module.CodeMissingRequiredField)
}

func TestDedent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "- a\n  - b\n- c", dedent("\n    - a\n      - b\n    - c\n    "))
	assert.Equal(t, "first\nsecond", dedent("first\n    second"))
	assert.Equal(t, "Decision Log", titleWords("decision_log"))
}
