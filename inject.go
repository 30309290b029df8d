package youmiya

// Inject is used as a namespace for dependency declaration builders.
var Inject = &injectBuilder{}

type (
	dependency struct {
		token   Token
		auto    bool
		options []ResolveOption
	}

	propertyDependency struct {
		key string
		dependency
	}

	// entry points for builders
	injectBuilder struct{}
)

// Token injects the value registered for token.
func (i *injectBuilder) Token(token Token, opts ...ResolveOption) dependency {
	return dependency{token: token, options: opts}
}

// Auto infers the token from the declared type of the parameter or field.
func (i *injectBuilder) Auto(opts ...ResolveOption) dependency {
	return dependency{auto: true, options: opts}
}

func (i *injectBuilder) Lazy(token Token) dependency {
	return i.Token(token, Lazily())
}

func (i *injectBuilder) Optional(token Token) dependency {
	return i.Token(token, Optional())
}

func (i *injectBuilder) Multiple(token Token) dependency {
	return i.Token(token, Multiple())
}
