package detectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/models"
)

func TestAnalyzeStructureFunctions(t *testing.T) {
	src := `def choose(flag, fallback):
    """Pick a branch."""
    if flag:
        return transform(flag)
    return fallback

async def poll():
    pass
`
	_, functions := AnalyzeStructure(src, models.LangPython)
	require.Len(t, functions, 2)

	choose := functions[0]
	assert.Equal(t, "choose", choose.Name)
	assert.Equal(t, 1, choose.StartLine)
	assert.Equal(t, 2, choose.ArgCount)
	assert.Equal(t, 1, choose.Complexity)
	assert.True(t, choose.HasDocstring)
	assert.False(t, choose.IsAsync)
	assert.Contains(t, choose.DependencyNames, "transform")

	poll := functions[1]
	assert.Equal(t, "poll", poll.Name)
	assert.True(t, poll.IsAsync)
	assert.False(t, poll.HasDocstring)
}

func TestAnalyzeStructureClasses(t *testing.T) {
	src := `class ReportService:
    def __init__(self):
        self.cache = {}
        self.name = ""

    def render(self):
        return self.cache
`
	classes, functions := AnalyzeStructure(src, models.LangPython)
	require.Len(t, classes, 1)
	assert.Equal(t, "ReportService", classes[0].Name)
	assert.Equal(t, 2, classes[0].MethodCount)
	assert.Equal(t, 2, classes[0].AttributeCount)
	assert.Len(t, functions, 2) // methods are functions too
}

func TestNestingDepth(t *testing.T) {
	src := `def deep(x):
    if x:
        for i in range(3):
            while x:
                if i:
                    pass
`
	_, functions := AnalyzeStructure(src, models.LangPython)
	require.Len(t, functions, 1)
	assert.Equal(t, 4, functions[0].NestingDepth)
	assert.Equal(t, 4, functions[0].Complexity)
}

func TestStructureDetectorFlags(t *testing.T) {
	// Tiny thresholds so a small fixture trips each rule.
	det := NewStructureDetector(StructureThresholds{
		ComplexityMedium: 1, ComplexityHigh: 2, ComplexityCritical: 3,
		LOCMedium: 100, LOCHigh: 200, LOCCritical: 300,
		GodObjectMethods: 1, MaxNestingDepth: 1,
	})
	src := `class Hub:
    def a(self):
        pass

    def b(self):
        pass

def tangled(x):
    if x:
        if x > 1:
            if x > 2:
                if x > 3:
                    return x
`
	tree := parseFor(src, models.LangPython)
	require.NotNil(t, tree)
	findings := det.Detect(models.SourceUnit{Path: "x.py"}, tree)

	var metrics []string
	var severities []models.Severity
	for _, f := range findings {
		flag, ok := f.(models.StructuralFlag)
		require.True(t, ok)
		metrics = append(metrics, flag.Metric)
		severities = append(severities, flag.Severity)
	}
	assert.Contains(t, metrics, "High complexity")
	assert.Contains(t, metrics, "Deep nesting")
	assert.Contains(t, metrics, "God object")
	assert.Contains(t, severities, models.SeverityCritical) // complexity 4 > 3
}

func TestStructureDetectorCleanSource(t *testing.T) {
	det := NewStructureDetector(DefaultStructureThresholds())
	src := `def add(a, b):
    return a + b
`
	findings := det.Detect(models.SourceUnit{Path: "x.py"}, parseFor(src, models.LangPython))
	assert.Empty(t, findings)
}

func TestDependencyNamesAreCappedAndSorted(t *testing.T) {
	var b strings.Builder
	b.WriteString("def busy():\n")
	for _, c := range "abcdefghijklmnopqr" { // 18 distinct callees
		b.WriteString("    fn_" + string(c) + "()\n")
	}
	_, functions := AnalyzeStructure(b.String(), models.LangPython)
	require.Len(t, functions, 1)
	deps := functions[0].DependencyNames
	assert.Len(t, deps, dependencyNameCap)
	assert.True(t, sortedStrings(deps))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
