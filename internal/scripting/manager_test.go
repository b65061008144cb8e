package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/scripting"
)

var _ ai.ScriptCaller = (*scripting.Manager)(nil)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewSeededSource(1), zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0o644))
	return dir
}

func hasLevel(logs *observer.ObservedLogs, lvl zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == lvl {
			return true
		}
	}
	return false
}

func TestManager_LoadScope_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScope("arena", dir, 0))
	assert.True(t, mgr.HasScope("arena"))
	ret, err := mgr.CallHook("arena", "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_LoadScope_RejectsEmptyScope(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadScope("", t.TempDir(), 0))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadScope("arena", dir, 0))
	ret, err := mgr.CallHook("arena", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownScope_LogsInfoReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("no_such_scope", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zap.InfoLevel), "expected Info log for missing scope")
}

func TestManager_CallHook_FallsBackToGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `function shared() return "global" end`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	ret, err := mgr.CallHook("unloaded", "shared")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("global"), ret)
}

func TestManager_CallHook_ScopeShadowsGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "g.lua", `function who() return "global" end`), 0))
	require.NoError(t, mgr.LoadScope("arena", writeTempLua(t, "a.lua", `function who() return "arena" end`), 0))
	ret, err := mgr.CallHook("arena", "who")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("arena"), ret)
}

func TestManager_CallHook_RuntimeError_LogsWarn(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `function boom() error("kaboom") end`)
	require.NoError(t, mgr.LoadScope("arena", dir, 0))
	ret, err := mgr.CallHook("arena", "boom")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zap.WarnLevel))
}

func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function count(n)
			local s = 0
			for i = 1, n do s = s + i end
			return s
		end
	`)
	require.NoError(t, mgr.LoadScope("arena", dir, 500))

	for range 20 {
		ret, err := mgr.CallHook("arena", "count", lua.LNumber(10))
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(55), ret, "repeated small calls must not exhaust the budget")
	}
	ret, err := mgr.CallHook("arena", "count", lua.LNumber(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret, "a runaway call is cut off")
	ret, err = mgr.CallHook("arena", "count", lua.LNumber(3))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(6), ret, "the VM recovers after a cut-off call")
}

func TestManager_LoadScope_SyntaxError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "broken.lua", `function (`)
	assert.Error(t, mgr.LoadScope("arena", dir, 0))
	assert.False(t, mgr.HasScope("arena"))
}

func TestManager_LoadScope_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadScope("arena", filepath.Join(t.TempDir(), "absent"), 0))
}

func TestManager_LoadScope_ReplacesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("arena", writeTempLua(t, "v1.lua", `function v() return 1 end`), 0))
	require.NoError(t, mgr.LoadScope("arena", writeTempLua(t, "v2.lua", `function v() return 2 end`), 0))
	ret, err := mgr.CallHook("arena", "v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_LoadScope_FilesRunInOrder(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`order = order .. "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`order = "a"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.lua"), []byte(`function get() return order end`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`not lua`), 0o644))
	require.NoError(t, mgr.LoadScope("arena", dir, 0))
	ret, err := mgr.CallHook("arena", "get")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("ab"), ret)
}

func TestManager_CallHook_ConcurrentScopes(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "id.lua", `function id(x) return x end`)
	require.NoError(t, mgr.LoadScope("a", dir, 0))
	require.NoError(t, mgr.LoadScope("b", dir, 0))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope := "a"
			if i%2 == 1 {
				scope = "b"
			}
			ret, err := mgr.CallHook(scope, "id", lua.LNumber(i))
			assert.NoError(t, err)
			assert.Equal(t, lua.LNumber(i), ret)
		}(i)
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { scripting.NewManager(dice.NewSeededSource(1), nil) })
}

func TestProperty_CallHook_AddMatchesGo(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("arena", writeTempLua(t, "add.lua", `function add(a, b) return a + b end`), 0))
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(-1000, 1000).Draw(rt, "a")
		b := rapid.IntRange(-1000, 1000).Draw(rt, "b")
		ret, err := mgr.CallHook("arena", "add", lua.LNumber(a), lua.LNumber(b))
		if err != nil {
			rt.Fatalf("CallHook: %v", err)
		}
		if ret != lua.LNumber(a+b) {
			rt.Fatalf("add(%d, %d) = %v", a, b, ret)
		}
	})
}
