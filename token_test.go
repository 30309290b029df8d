package youmiya

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	t.Run("it should give distinct identities to injection tokens with the same id", func(t *testing.T) {
		// GIVEN
		c := New()
		first := NewToken[string]("config")
		second := NewToken[string]("config")
		_, _ = c.Register(first).ToValue("first")

		// WHEN
		_, err := c.Resolve(second)

		// THEN
		assert.ErrorIs(t, err, ErrNoProviderFound)
		assert.Equal(t, "InjectionToken(config)", first.String())
		assert.Equal(t, "config", first.ID())
	})

	t.Run("it should unwrap nested identifiers", func(t *testing.T) {
		// GIVEN
		inner := NewToken[int]("answer")
		outer := IdentifierFor[int]("outer", NewIdentifier[int]("unused"))
		wrapped := IdentifierFor[int]("wrapped", inner)

		// WHEN / THEN
		assert.Equal(t, Token(inner), UnwrapToken(wrapped))
		assert.Equal(t, Token("unused"), UnwrapToken(outer))
		assert.Equal(t, Token("plain"), UnwrapToken("plain"))
		assert.Equal(t, "outer", outer.Name())
	})

	t.Run("it should validate tokens", func(t *testing.T) {
		var nilToken *InjectionToken[int]

		assert.NoError(t, validateToken("name"))
		assert.NoError(t, validateToken(Type[int]()))
		assert.NoError(t, validateToken(NewToken[int]("id")))
		assert.ErrorIs(t, validateToken(nil), ErrInvalidToken)
		assert.ErrorIs(t, validateToken(""), ErrInvalidToken)
		assert.ErrorIs(t, validateToken(nilToken), ErrInvalidToken)
		assert.ErrorIs(t, validateToken(map[string]int{}), ErrInvalidToken)
	})

	t.Run("it should print tokens", func(t *testing.T) {
		assert.Equal(t, `"name"`, TokenString("name"))
		assert.Equal(t, "Type(int)", TokenString(Type[int]()))
		assert.Equal(t, "<nil>", TokenString(nil))
		assert.Equal(t, "Class(repo)", TokenString(MustClass(NewTestRepository, Named("repo"))))
		assert.Equal(t, "42", TokenString(42))
	})
}
