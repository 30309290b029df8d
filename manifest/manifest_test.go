package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a-peyrard/youmiya"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
values:
  - token: db.url
    value: postgres://localhost/app
  - token: pool.size
    value: 4
  - token: pool.size
    value: 8
aliases:
  - token: database
    target: db.url
`

func TestParse(t *testing.T) {
	t.Run("it should decode values and aliases", func(t *testing.T) {
		// WHEN
		m, err := Parse([]byte(sample))

		// THEN
		require.NoError(t, err)
		assert.Len(t, m.Values, 3)
		assert.Equal(t, "db.url", m.Values[0].Token)
		assert.Equal(t, 4, m.Values[1].Value)
		assert.Equal(t, []Alias{{Token: "database", Target: "db.url"}}, m.Aliases)
	})

	t.Run("it should reject an empty payload", func(t *testing.T) {
		// WHEN
		_, err := Parse([]byte("  \n"))

		// THEN
		assert.Error(t, err)
	})

	t.Run("it should reject an alias without target", func(t *testing.T) {
		// WHEN
		_, err := Parse([]byte("aliases:\n  - token: foo\n"))

		// THEN
		assert.ErrorContains(t, err, "has no target")
	})
}

func TestLoad(t *testing.T) {
	t.Run("it should read a manifest file", func(t *testing.T) {
		// GIVEN
		path := filepath.Join(t.TempDir(), "container.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

		// WHEN
		m, err := Load(path)

		// THEN
		require.NoError(t, err)
		assert.Len(t, m.Values, 3)
	})

	t.Run("it should fail for a missing file", func(t *testing.T) {
		// WHEN
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// THEN
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	t.Run("it should register values and aliases", func(t *testing.T) {
		// GIVEN
		m, err := Parse([]byte(sample))
		require.NoError(t, err)
		c := youmiya.New()

		// WHEN
		_, err = m.Apply(c)

		// THEN
		require.NoError(t, err)
		url, err := youmiya.Resolve[string](c, "database")
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/app", url)
		size, err := youmiya.Resolve[int](c, "pool.size")
		require.NoError(t, err)
		assert.Equal(t, 8, size)
		sizes, err := youmiya.ResolveAll[int](c, "pool.size")
		require.NoError(t, err)
		assert.Equal(t, []int{4, 8}, sizes)
	})

	t.Run("it should remove every registration when unregistering", func(t *testing.T) {
		// GIVEN
		m, err := Parse([]byte(sample))
		require.NoError(t, err)
		c := youmiya.New()
		unregister, err := m.Apply(c)
		require.NoError(t, err)

		// WHEN
		unregister()

		// THEN
		assert.Empty(t, c.GetRegistration("db.url"))
		assert.Empty(t, c.GetRegistration("pool.size"))
		assert.Empty(t, c.GetRegistration("database"))
	})
}
