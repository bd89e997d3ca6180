package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/models"
)

func TestMatchSinksDynamicExecution(t *testing.T) {
	t.Run("eval with variable argument", func(t *testing.T) {
		src := `def run(user_input):
    return eval(user_input)
`
		sinks, _ := MatchSinks(src, models.LangPython)
		require.Len(t, sinks, 1)
		assert.Equal(t, "eval", sinks[0].Call)
		assert.Equal(t, "Code_Injection", sinks[0].Risk)
		assert.True(t, sinks[0].Critical)
		assert.Equal(t, "user_input", sinks[0].ArgVar)
	})

	t.Run("eval is flagged even with a literal", func(t *testing.T) {
		src := `x = eval("2 + 2")
`
		sinks, _ := MatchSinks(src, models.LangPython)
		require.Len(t, sinks, 1)
		assert.True(t, sinks[0].Critical)
		assert.Contains(t, sinks[0].Details, "Literal")
	})
}

func TestMatchSinksTaintHeuristic(t *testing.T) {
	t.Run("os.system with literal is tolerated", func(t *testing.T) {
		src := `import os
os.system("ls -la")
`
		sinks, _ := MatchSinks(src, models.LangPython)
		assert.Empty(t, sinks)
	})

	t.Run("os.system with variable is flagged", func(t *testing.T) {
		src := `import os

def run(cmd):
    os.system(cmd)
`
		sinks, _ := MatchSinks(src, models.LangPython)
		require.Len(t, sinks, 1)
		assert.Equal(t, "os.system", sinks[0].Call)
		assert.Equal(t, "Command_Injection", sinks[0].Risk)
		assert.False(t, sinks[0].Critical)
	})

	t.Run("pickle.load with variable is flagged high", func(t *testing.T) {
		src := `def restore(f):
    return pickle.load(f)
`
		sinks, _ := MatchSinks(src, models.LangPython)
		require.Len(t, sinks, 1)
		issue := sinks[0].Normalize("x.py")
		assert.Equal(t, models.SeverityHigh, issue.Severity)
		assert.Equal(t, models.CategorySecurity, issue.Category)
	})

	t.Run("unrelated calls are ignored", func(t *testing.T) {
		src := `subprocess.run(["ls"])
shutil.copy(a, b)
`
		sinks, _ := MatchSinks(src, models.LangPython)
		assert.Empty(t, sinks)
	})
}

func TestMatchSinksRouteAudit(t *testing.T) {
	t.Run("routed endpoint without auth is reported", func(t *testing.T) {
		src := `@app.route("/admin")
def admin_panel():
    return render()
`
		_, routes := MatchSinks(src, models.LangPython)
		require.Len(t, routes, 1)
		assert.Equal(t, "admin_panel", routes[0].Function)
		assert.Contains(t, routes[0].Decorators, "@app.route")
		assert.False(t, routes[0].HasAuth)
	})

	t.Run("auth decorator silences the finding", func(t *testing.T) {
		src := `@app.route("/admin")
@login_required
def admin_panel():
    return render()
`
		_, routes := MatchSinks(src, models.LangPython)
		assert.Empty(t, routes)
	})

	t.Run("non-routed decorated functions are ignored", func(t *testing.T) {
		src := `@cached
def helper():
    return 1
`
		_, routes := MatchSinks(src, models.LangPython)
		assert.Empty(t, routes)
	})

	t.Run("router verb decorators count as routes", func(t *testing.T) {
		src := `@router.post("/items")
def create_item(payload):
    return save(payload)
`
		_, routes := MatchSinks(src, models.LangPython)
		require.Len(t, routes, 1)
	})
}

func TestRouteAuditNormalization(t *testing.T) {
	entry := models.RouteAuditEntry{
		Line:       3,
		Function:   "admin_panel",
		Decorators: []string{"@app.route"},
	}
	issue := entry.Normalize("api.py")
	assert.Equal(t, models.CategorySecurity, issue.Category)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
	assert.Contains(t, issue.Title, "admin_panel")
}
