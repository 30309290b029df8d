package youmiya

type (
	// RegistrationSource serves registrations for tokens, it is used to override or complete the
	// registrations of a container during a resolution.
	RegistrationSource interface {
		Get(token Token) []*Registration
	}

	// RegistrationSourceFunc adapts a function, e.g. Container.GetRegistration, to a RegistrationSource.
	RegistrationSourceFunc func(token Token) []*Registration

	// MapSource is a static RegistrationSource.
	MapSource map[Token][]*Registration
)

func (f RegistrationSourceFunc) Get(token Token) []*Registration {
	return f(token)
}

func (m MapSource) Get(token Token) []*Registration {
	return m[UnwrapToken(token)]
}

// Add appends a registration for token and returns the source for chaining.
func (m MapSource) Add(token Token, provider Provider, opts ...RegisterOption) MapSource {
	key := UnwrapToken(token)
	m[key] = append(m[key], NewRegistration(provider, opts...))
	return m
}

// Sources chains several sources, the first one serving a token wins.
func Sources(sources ...RegistrationSource) RegistrationSource {
	return RegistrationSourceFunc(func(token Token) []*Registration {
		for _, source := range sources {
			if source == nil {
				continue
			}
			if registrations := source.Get(token); len(registrations) > 0 {
				return registrations
			}
		}
		return nil
	})
}
