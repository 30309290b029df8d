package youmiya

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorRegistry(t *testing.T) {
	t.Run("it should call the handlers in subscription order", func(t *testing.T) {
		// GIVEN
		r := NewInterceptorRegistry()
		var calls []string
		On(r, AfterResolve, func(AfterResolvePayload) *AfterResolvePayload {
			calls = append(calls, "first")
			return nil
		})
		On(r, AfterResolve, func(AfterResolvePayload) *AfterResolvePayload {
			calls = append(calls, "second")
			return nil
		})

		// WHEN
		_, modified := Dispatch(r, AfterResolve, AfterResolvePayload{})

		// THEN
		assert.Equal(t, []string{"first", "second"}, calls)
		assert.False(t, modified)
	})

	t.Run("it should merge the patches of before handlers", func(t *testing.T) {
		// GIVEN
		r := NewInterceptorRegistry()
		var seen Token
		On(r, BeforeResolve, func(ResolvePayload) *ResolvePayload {
			return &ResolvePayload{Token: "patched"}
		})
		On(r, BeforeResolve, func(p ResolvePayload) *ResolvePayload {
			seen = p.Token
			return nil
		})
		ctx := ResolutionContext{}

		// WHEN
		result, modified := Dispatch(r, BeforeResolve, ResolvePayload{Token: "original", Context: &ctx})

		// THEN
		assert.True(t, modified)
		assert.Equal(t, "patched", seen)
		assert.Equal(t, "patched", result.Token)
		assert.Same(t, &ctx, result.Context)
	})

	t.Run("it should ignore the patches of after handlers", func(t *testing.T) {
		// GIVEN
		r := NewInterceptorRegistry()
		On(r, AfterResolve, func(AfterResolvePayload) *AfterResolvePayload {
			return &AfterResolvePayload{Result: "patched"}
		})

		// WHEN
		result, modified := Dispatch(r, AfterResolve, AfterResolvePayload{Result: "original"})

		// THEN
		assert.False(t, modified)
		assert.Equal(t, "original", result.Result)
	})

	t.Run("it should stop calling an unsubscribed handler", func(t *testing.T) {
		// GIVEN
		r := NewInterceptorRegistry()
		calls := 0
		sub := On(r, BeforeRegister, func(RegisterPayload) *RegisterPayload {
			calls++
			return nil
		})
		other := On(r, BeforeRegister, func(RegisterPayload) *RegisterPayload {
			return nil
		})

		// WHEN
		Dispatch(r, BeforeRegister, RegisterPayload{})
		sub.Unsubscribe()
		sub.Unsubscribe()
		Dispatch(r, BeforeRegister, RegisterPayload{})
		r.Off(other)

		// THEN
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, r.Len(BeforeRegister.String()))
	})
}

func TestContainer_Interceptors(t *testing.T) {
	t.Run("it should let before resolve handlers redirect the token", func(t *testing.T) {
		// GIVEN
		c := New()
		_, _ = c.Register("new").ToValue("from new")
		On(c.Interceptors(), BeforeResolve, func(p ResolvePayload) *ResolvePayload {
			if p.Token == "old" {
				return &ResolvePayload{Token: "new"}
			}
			return nil
		})

		// WHEN
		value, err := Resolve[string](c, "old")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "from new", value)
	})

	t.Run("it should build an unregistered class a handler redirects to", func(t *testing.T) {
		// GIVEN
		c := New()
		repoClass := MustClass(NewTestRepository)
		On(c.Interceptors(), BeforeResolve, func(p ResolvePayload) *ResolvePayload {
			if p.Token == "repo" {
				return &ResolvePayload{Token: repoClass}
			}
			return nil
		})

		// WHEN
		repo, err := Resolve[*TestRepository](c, "repo")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "test-data", repo.Data)
	})

	t.Run("it should let before resolve handlers change the context", func(t *testing.T) {
		// GIVEN
		c := New()
		On(c.Interceptors(), BeforeResolve, func(p ResolvePayload) *ResolvePayload {
			ctx := *p.Context
			ctx.Optional = true
			return &ResolvePayload{Context: &ctx}
		})

		// WHEN
		value, err := c.Resolve("missing")

		// THEN
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("it should notify the outcome of external resolutions only", func(t *testing.T) {
		// GIVEN
		c := New()
		_, _ = c.Register("name").ToValue("svc")
		_, _ = c.Register("service").ToClass(MustClass(
			NewTestService,
			Dependencies(Inject.Token("name"), Inject.Optional("repo")),
		))
		var outcomes []AfterResolvePayload
		On(c.Interceptors(), AfterResolve, func(p AfterResolvePayload) *AfterResolvePayload {
			outcomes = append(outcomes, p)
			return nil
		})

		// WHEN
		_, _ = c.Resolve("service")
		_, _ = c.Resolve("missing")

		// THEN
		require.Len(t, outcomes, 2)
		assert.Equal(t, "service", outcomes[0].Token)
		assert.IsType(t, &TestService{}, outcomes[0].Result)
		assert.NoError(t, outcomes[0].Err)
		assert.ErrorIs(t, outcomes[1].Err, ErrNoProviderFound)
	})

	t.Run("it should let before register handlers replace the provider", func(t *testing.T) {
		// GIVEN
		c := New()
		On(c.Interceptors(), BeforeRegister, func(p RegisterPayload) *RegisterPayload {
			if p.Token == "secret" {
				return &RegisterPayload{Provider: ValueProvider{Value: "***"}}
			}
			return nil
		})
		var registered []*Registration
		On(c.Interceptors(), AfterRegister, func(p AfterRegisterPayload) *AfterRegisterPayload {
			registered = append(registered, p.Registration)
			return nil
		})

		// WHEN
		_, err := c.Register("secret").ToValue("password")

		// THEN
		require.NoError(t, err)
		value, err := Resolve[string](c, "secret")
		require.NoError(t, err)
		assert.Equal(t, "***", value)
		require.Len(t, registered, 1)
		assert.Equal(t, ValueProvider{Value: "***"}, registered[0].Provider())
	})

	t.Run("it should keep interceptors per container", func(t *testing.T) {
		// GIVEN
		parent := New()
		calls := 0
		On(parent.Interceptors(), BeforeResolve, func(ResolvePayload) *ResolvePayload {
			calls++
			return nil
		})
		child := parent.Fork("child")
		_, _ = parent.Register("answer").ToValue(42)

		// WHEN
		_, _ = child.Resolve("answer")

		// THEN
		assert.Equal(t, 0, calls)
	})
}
