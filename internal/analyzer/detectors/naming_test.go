package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/models"
)

func TestAuditNamingPython(t *testing.T) {
	t.Run("camelCase variable is tolerated", func(t *testing.T) {
		// The underscore rule is deliberately one-directional: snake-case
		// contexts never flag camelCase names.
		src := "myValue = compute()\n"
		assert.Empty(t, AuditNaming(src, models.LangPython))
	})

	t.Run("snake_case everywhere is clean", func(t *testing.T) {
		src := `def load_users():
    user_count = 0
    return user_count
`
		assert.Empty(t, AuditNaming(src, models.LangPython))
	})

	t.Run("single letter outside allowlist is non-descriptive", func(t *testing.T) {
		src := "q = fetch()\n"
		violations := AuditNaming(src, models.LangPython)
		require.Len(t, violations, 1)
		assert.Equal(t, "q", violations[0].Name)
		assert.True(t, violations[0].NonDescriptive)
	})

	t.Run("conventional loop and exception letters pass", func(t *testing.T) {
		src := "i = 0\nx = 1\n_ = ignore()\n"
		assert.Empty(t, AuditNaming(src, models.LangPython))
	})

	t.Run("tuple targets are unwrapped", func(t *testing.T) {
		src := "a, q = pair()\n"
		violations := AuditNaming(src, models.LangPython)
		require.Len(t, violations, 2) // neither 'a' nor 'q' is allow-listed
	})
}

func TestAuditNamingJavaScript(t *testing.T) {
	t.Run("snake_case in camelCase context is flagged", func(t *testing.T) {
		src := "const my_var = 1;\n"
		violations := AuditNaming(src, models.LangJavaScript)
		require.Len(t, violations, 1)
		assert.Equal(t, "my_var", violations[0].Name)
		assert.Equal(t, string(CamelCase), violations[0].Expected)
		assert.False(t, violations[0].NonDescriptive)
	})

	t.Run("snake_case function is flagged", func(t *testing.T) {
		src := "function load_all() { return 1; }\n"
		violations := AuditNaming(src, models.LangJavaScript)
		require.Len(t, violations, 1)
		assert.Equal(t, "load_all", violations[0].Name)
	})

	t.Run("camelCase is clean", func(t *testing.T) {
		src := "function loadAll() { const itemCount = 1; return itemCount; }\n"
		assert.Empty(t, AuditNaming(src, models.LangJavaScript))
	})
}

func TestAuditNamingUnknownLanguage(t *testing.T) {
	assert.Empty(t, AuditNaming("whatever = 1", models.LangUnknown))
}

func TestNamingViolationNormalization(t *testing.T) {
	src := "const my_var = 1;\n"
	d := NewNamingDetector()
	findings := d.Detect(models.SourceUnit{Path: "a.js"}, parseFor(src, models.LangJavaScript))
	require.Len(t, findings, 1)
	issue := findings[0].Normalize("a.js")
	assert.Equal(t, models.CategoryBestPractice, issue.Category)
	assert.Equal(t, models.SeverityNitpick, issue.Severity)
	assert.Contains(t, issue.Title, "my_var")
}
