package youmiya

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("it should match sentinel errors through wrapping", func(t *testing.T) {
		cases := map[error]error{
			&InvalidTokenError{Token: "", Reason: "empty"}: ErrInvalidToken,
			&NoProviderFoundError{Token: "a"}:             ErrNoProviderFound,
			&UnsupportedProviderError{}:                   ErrUnsupportedProvider,
			&CircularDependencyError{Token: "a"}:          ErrCircularDependency,
		}
		for err, sentinel := range cases {
			assert.ErrorIs(t, fmt.Errorf("wrapped:\n\t%w", err), sentinel)
		}
	})

	t.Run("it should describe a missing provider", func(t *testing.T) {
		err := &NoProviderFoundError{Token: NewToken[int]("port")}

		assert.Equal(t, "no provider found for token InjectionToken(port)", err.Error())
	})

	t.Run("it should print the chain of a cycle", func(t *testing.T) {
		err := &CircularDependencyError{Token: "a", Chain: []Token{"a", "b", "a"}}

		assert.Equal(
			t,
			"circular dependency detected for token \"a\":\n\"a\"\n\t -> \"b\"\n\t\t -> \"a\"\n",
			err.Error(),
		)
	})

	t.Run("it should name the unsupported provider", func(t *testing.T) {
		err := &UnsupportedProviderError{Provider: unknownProvider{}}

		assert.Equal(t, "unsupported provider type detected: youmiya.unknownProvider", err.Error())
	})
}
