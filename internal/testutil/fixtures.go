package testutil

// ValidQCSkill is a complete skill with every optional field set.
const ValidQCSkill = `
class QualityControl:
    """QC filtering for scRNA-seq data."""
    name = "qc_filtering"
    version = "1.2.0"
    depends_on = ["scanpy"]
    default_params = {
        "min_genes": 200,
        "max_genes": 5000,
        "max_pct_mito": 20,
        "min_cells": 3,
    }
    lessons_learned = """
    - Cortex tissue: max_pct_mito=20 retains ~85% of cells
    - FFPE samples: increase to max_pct_mito=40
    - Mouse data: use mt- prefix (lowercase). Human: MT-
    - If retention < 60%, thresholds are probably too aggressive
    """
    @staticmethod
    def run(adata_path, **kwargs):
        params = {**QualityControl.default_params, **kwargs}
        return params
`

// ValidNormalizeSkill depends on ValidQCSkill.
const ValidNormalizeSkill = `
class Normalization:
    """Normalization for scRNA-seq data."""
    name = "normalize"
    version = "1.1.0"
    depends_on = ["scanpy", "qc_filtering"]
    default_params = {"method": "scran"}
    lessons_learned = """
    - scran outperforms log-normalize for heterogeneous tissues
    - For < 200 cells, fall back to simple normalization
    """
    @staticmethod
    def run(adata_path, **kwargs):
        return kwargs
`

// ValidClusterSkill has a single-line run method.
const ValidClusterSkill = `
class Clustering:
    """Cell clustering for scRNA-seq data."""
    name = "clustering"
    version = "1.0.0"
    depends_on = ["scanpy"]
    default_params = {"resolution": 0.6, "method": "leiden"}
    lessons_learned = """
    - Resolution 0.6 gives biologically meaningful clusters for cortex
    - Leiden outperforms Louvain for datasets > 5000 cells
    """
    @staticmethod
    def run(**kwargs): pass
`

// ValidPlan is a seven step plan with three steps complete.
const ValidPlan = `
class AnalysisPlan:
    """Cortex analysis plan."""
    name = "cortex_analysis"
    objective = "Complete scRNA-seq analysis pipeline"
    steps = [
        {"id": 1, "action": "load_data", "status": "complete",
         "output": "loaded 15000 cells x 20000 genes"},
        {"id": 2, "action": "qc_filtering", "status": "complete",
         "output": "filtered to 12500 cells using max_pct_mito=20"},
        {"id": 3, "action": "normalize", "status": "complete",
         "output": "scran normalization applied"},
        {"id": 4, "action": "find_hvg", "status": "pending"},
        {"id": 5, "action": "dim_reduction", "status": "pending", "depends_on": [4]},
        {"id": 6, "action": "clustering", "status": "pending", "depends_on": [5]},
        {"id": 7, "action": "marker_genes", "status": "pending", "depends_on": [6]},
    ]
    decision_log = """
    - Chose scran over log-normalize based on benchmark results
    - Will use leiden clustering based on dataset size > 5000 cells
    """
`

// ValidMemory is classified by its class-name suffix.
const ValidMemory = `
class AnalysisState:
    """Working memory."""
    phase = "analysis"
    tasks = ["find_hvg", "dim_reduction", "clustering", "markers"]
    known_issues = {"batch_effect": "plates 1 and 2 show batch effect"}
    reflection = """
    QC and normalization complete. Data quality is good.
    Batch effect between plates needs correction before clustering.
    """
`

// ValidContext describes a project.
const ValidContext = `
class ProjectContext:
    """Project context."""
    project = "cortex_scrna"
    description = "scRNA-seq analysis of mouse cortex P14"
    datasets = ["data/raw/cortex_p14.h5ad"]
    environment = {"scanpy": "1.10.0", "python": "3.11"}
    conventions = [
        "Use scanpy for all analysis",
        "Save figures to figures/ directory",
        "Use .h5ad format for all intermediate files",
    ]
`

// ValidProtocol is a handoff protocol between two agents.
const ValidProtocol = `
class HandoffProtocol:
    """Analysis to review handoff."""
    name = "analysis_review"
    description = "Hands finished analyses to the reviewer"
    handoff_schema = {
        "required_fields": ["summary", "figures"],
        "optional_fields": ["notes"],
    }
    validation_rules = ["summary is non-empty"]
`

// CorruptedSkillMissingFields has neither name nor run.
const CorruptedSkillMissingFields = `
class QC:
    # missing name
    # missing run()
    depends_on = "scanpy"
`

// CorruptedSkillBadTypes has fields of the wrong type.
const CorruptedSkillBadTypes = `
class QC:
    name = "qc"
    version = "1.0.0"
    depends_on = 42
    default_params = "not a dict"
    @staticmethod
    def run(**kwargs): pass
`

// FixableSkill validates after its version and depends_on are corrected.
const FixableSkill = `
class QC:
    name = "qc"
    version = "1.0"
    depends_on = "scanpy"
    @staticmethod
    def run(**kwargs): pass
`

// SampleBundle holds two skills and one module of every other kind.
const SampleBundle = `"""stato bundle"""

SKILLS = {
    "qc": '''
class QC:
    """QC."""
    name = "qc"
    version = "1.0.0"
    lessons_learned = "keep mito below twenty percent"
    def run(self, path: str) -> dict:
        return {}
''',
    "normalize": '''
class Normalize:
    """Normalize."""
    name = "normalize"
    version = "1.0"
    depends_on = "qc"
    lessons_learned = "scran works best"
    def run(self, path: str) -> dict:
        return {}
''',
}

PLAN = '''
class AnalysisPlan:
    """Plan."""
    name = "analysis"
    objective = "analyse"
    steps = [
        {"id": 1, "action": "qc", "status": "complete"},
        {"id": 2, "action": "normalize", "depends_on": [1]},
    ]
    decision_log = "qc first"
'''

MEMORY = '''
class AnalysisState:
    """Memory."""
    phase = "qc"
'''

CONTEXT = '''
class ProjectContext:
    """Context."""
    project = "cortex"
    description = "mouse cortex"
'''
`
