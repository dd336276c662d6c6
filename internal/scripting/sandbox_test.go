package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bladecore/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_DangerousGlobalsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := scripting.DoStringLimited(L, `
		local x = math.sqrt(4)
		assert(x == 2.0, "math.sqrt failed")
		local s = string.upper("hello")
		assert(s == "HELLO", "string.upper failed")
	`, 0)
	assert.NoError(t, err)
}

func TestDoStringLimited_InstructionLimitExceeded(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	assert.Error(t, scripting.DoStringLimited(L, `while true do end`, 10))
}

func TestDoStringLimited_BudgetIsPerCall(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for i := 0; i < 50; i++ {
		require.NoError(t, scripting.DoStringLimited(L, `local x = 0 for i = 1, 20 do x = x + i end`, 200))
	}
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		L := scripting.NewSandboxedState()
		defer L.Close()
		if err := scripting.DoStringLimited(L, `while true do end`, limit); err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
