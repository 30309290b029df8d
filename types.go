package youmiya

import (
	"reflect"
)

var (
	errorType = TypeOf[error]()
)

// TypeOf returns the reflect.Type of I, working for interface types as well.
func TypeOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}

// Type returns the token used by automatic inference for values of type T.
func Type[T any]() Token {
	return TypeOf[T]()
}
