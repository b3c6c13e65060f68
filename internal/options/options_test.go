package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	width    int
	name     string
	auto     bool
	lastCall string
}

func (c *testConfig) setWidth(v int) error {
	if v < 0 {
		return errors.New("width cannot be negative")
	}
	c.width = v
	c.lastCall = "setWidth"

	return nil
}

func (c *testConfig) setName(name string) {
	c.name = name
	c.lastCall = "setName"
}

func withWidth(v int) Option[*testConfig] {
	return New(func(c *testConfig) error { return c.setWidth(v) })
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) { c.setName(name) })
}

func withAuto(auto bool) Option[*testConfig] {
	return NoError(func(c *testConfig) { c.auto = auto })
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &testConfig{}

		err := Apply(cfg, withWidth(10), withName("income"), withAuto(true))
		require.NoError(t, err)
		require.Equal(t, 10, cfg.width)
		require.Equal(t, "income", cfg.name)
		require.True(t, cfg.auto)
		require.Equal(t, "setName", cfg.lastCall)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}

		err := Apply(cfg, withWidth(5), withWidth(-1), withName("unreached"))
		require.ErrorContains(t, err, "width cannot be negative")
		require.Equal(t, 5, cfg.width)
		require.Empty(t, cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}

		require.NoError(t, Apply(cfg, nil, withName("x"), nil))
		require.Equal(t, "x", cfg.name)
	})

	t.Run("no options leaves target unchanged", func(t *testing.T) {
		cfg := &testConfig{width: 3}

		require.NoError(t, Apply(cfg))
		require.Equal(t, 3, cfg.width)
	})
}

func TestChain(t *testing.T) {
	cfg := &testConfig{}
	defaults := Chain(withWidth(9), withAuto(true), nil)

	require.NoError(t, Apply[*testConfig](cfg, defaults, withName("later")))
	require.Equal(t, 9, cfg.width)
	require.True(t, cfg.auto)
	require.Equal(t, "later", cfg.name)

	failing := Chain(withWidth(-2))
	require.Error(t, Apply[*testConfig](cfg, failing))
}

func TestWhen(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, Apply(cfg, When(false, withName("skipped")), When(true, withWidth(4))))
	require.Empty(t, cfg.name)
	require.Equal(t, 4, cfg.width)
}

func TestGenericsWithPrimitive(t *testing.T) {
	var num int
	opt := NoError(func(n *int) { *n = 42 })

	require.NoError(t, opt.apply(&num))
	require.Equal(t, 42, num)
}
