package slices

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	t.Run("it should keep matching elements in order", func(t *testing.T) {
		// GIVEN
		input := []string{"foo", "bar", "hello", "augustin", "baz"}

		// WHEN
		result := Filter(input, func(s string) bool { return len(s) == 3 })

		// THEN
		assert.Equal(t, []string{"foo", "bar", "baz"}, result)
	})

	t.Run("it should return nil when no elements match", func(t *testing.T) {
		// WHEN
		result := Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 })

		// THEN
		assert.Empty(t, result)
	})
}

func TestUnsafeMap(t *testing.T) {
	t.Run("it should map all values", func(t *testing.T) {
		// WHEN
		result, err := UnsafeMap([]string{"1", "2"}, strconv.Atoi)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, result)
	})

	t.Run("it should stop at the first error", func(t *testing.T) {
		// GIVEN
		calls := 0
		mapper := func(s string) (int, error) {
			calls++
			if s == "boom" {
				return 0, errors.New("boom")
			}
			return len(s), nil
		}

		// WHEN
		result, err := UnsafeMap([]string{"a", "boom", "c"}, mapper)

		// THEN
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, 2, calls)
	})
}

func TestReversed(t *testing.T) {
	t.Run("it should reverse without touching the input", func(t *testing.T) {
		// GIVEN
		input := []int{1, 2, 3}

		// WHEN
		result := Reversed(input)

		// THEN
		assert.Equal(t, []int{3, 2, 1}, result)
		assert.Equal(t, []int{1, 2, 3}, input)
	})
}

func TestLast(t *testing.T) {
	t.Run("it should return the last element", func(t *testing.T) {
		last, found := Last([]string{"a", "b"})
		assert.True(t, found)
		assert.Equal(t, "b", last)
	})

	t.Run("it should report empty slices", func(t *testing.T) {
		_, found := Last([]string{})
		assert.False(t, found)
	})
}
