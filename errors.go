package youmiya

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidToken        = errors.New("invalid injection token")
	ErrNoProviderFound     = errors.New("no provider found")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrCircularDependency  = errors.New("circular dependency detected")

	// ErrNoReflectionSupport is returned by a MetadataReader asked to infer a token
	// when it has no way to do so.
	ErrNoReflectionSupport = errors.New("automatic token inference requires reflection support")
)

type (
	InvalidTokenError struct {
		Token  Token
		Reason string
	}

	NoProviderFoundError struct {
		Token Token
	}

	UnsupportedProviderError struct {
		Provider Provider
	}

	// CircularDependencyError carries the token found twice and the chain of tokens that led to it,
	// from the root of the resolution to the token.
	CircularDependencyError struct {
		Token Token
		Chain []Token
	}
)

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("injection token %s is invalid: %s", TokenString(e.Token), e.Reason)
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

func (e *NoProviderFoundError) Error() string {
	return fmt.Sprintf("no provider found for token %s", TokenString(e.Token))
}

func (e *NoProviderFoundError) Is(target error) bool {
	return target == ErrNoProviderFound
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider type detected: %T", e.Provider)
}

func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected for token %s:\n%s", TokenString(e.Token), formatChain(e.Chain))
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

func formatChain(chain []Token) string {
	var b strings.Builder
	for i, token := range chain {
		b.WriteString(strings.Repeat("\t", i))
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(TokenString(token))
		b.WriteString("\n")
	}
	return b.String()
}
