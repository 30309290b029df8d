package youmiya

import (
	"fmt"
	"reflect"
)

type (
	// Token identifies a provider in a container.
	//
	// Any comparable value but nil and the empty string can be used: strings, custom constants,
	// *InjectionToken, *Class or reflect.Type.
	Token = any

	// InjectionToken is an identity token. Two tokens created with the same id are still different.
	InjectionToken[T any] struct {
		id string
	}

	// Identifier binds a display name to an underlying token; containers always use the unwrapped token.
	Identifier[T any] struct {
		name  string
		token Token
	}

	tokenWrapper interface {
		unwrapToken() Token
	}
)

func NewToken[T any](id string) *InjectionToken[T] {
	return &InjectionToken[T]{id: id}
}

func (t *InjectionToken[T]) ID() string {
	return t.id
}

func (t *InjectionToken[T]) String() string {
	return fmt.Sprintf("InjectionToken(%s)", t.id)
}

// NewIdentifier creates an identifier for a named string token.
func NewIdentifier[T any](name string) Identifier[T] {
	return Identifier[T]{name: name, token: name}
}

// IdentifierFor creates an identifier wrapping an arbitrary token.
func IdentifierFor[T any](name string, token Token) Identifier[T] {
	return Identifier[T]{name: name, token: token}
}

func (i Identifier[T]) Name() string {
	return i.name
}

func (i Identifier[T]) Token() Token {
	return i.token
}

func (i Identifier[T]) String() string {
	return fmt.Sprintf("Identifier(%s)", i.name)
}

func (i Identifier[T]) unwrapToken() Token {
	return i.token
}

// UnwrapToken returns the key under which a token is stored in a container.
func UnwrapToken(token Token) Token {
	for {
		wrapper, ok := token.(tokenWrapper)
		if !ok {
			return token
		}
		token = wrapper.unwrapToken()
	}
}

func validateToken(token Token) error {
	if token == nil {
		return &InvalidTokenError{Token: token, Reason: "token is nil"}
	}
	if s, ok := token.(string); ok && s == "" {
		return &InvalidTokenError{Token: token, Reason: "token is an empty string"}
	}
	if !reflect.TypeOf(token).Comparable() {
		return &InvalidTokenError{Token: token, Reason: fmt.Sprintf("type %T is not comparable", token)}
	}
	if ptr := reflect.ValueOf(token); ptr.Kind() == reflect.Pointer && ptr.IsNil() {
		return &InvalidTokenError{Token: token, Reason: "token is a nil pointer"}
	}
	return nil
}

// TokenString gives a human readable representation of a token.
func TokenString(token Token) string {
	switch t := token.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", t)
	case reflect.Type:
		return fmt.Sprintf("Type(%s)", t.String())
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
