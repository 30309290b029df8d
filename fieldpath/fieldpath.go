// Package fieldpath reads, writes and enumerates struct fields addressed by dotted paths
// (e.g. "Database.Pool.Size"). Maps with string keys can be traversed as well.
package fieldpath

import (
	"fmt"
	"reflect"
	"strings"
)

// Get retrieves the value at the given dotted path.
func Get(origin any, path string) (any, error) {
	if origin == nil {
		return nil, fmt.Errorf("cannot get field %s from nil origin", path)
	}
	if path == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	current := reflect.ValueOf(origin)
	for i, token := range strings.Split(path, ".") {
		if token == "" {
			return nil, fmt.Errorf("empty token at position %d in field path %s", i, path)
		}

		current = Deref(current)
		if !current.IsValid() {
			return nil, fmt.Errorf("encountered nil value at token %s (position %d) in field path %s", token, i, path)
		}

		switch current.Kind() {
		case reflect.Map:
			next := current.MapIndex(reflect.ValueOf(token))
			if !next.IsValid() {
				return nil, fmt.Errorf("key %s not found in map at position %d in field path %s", token, i, path)
			}
			current = next

		case reflect.Struct:
			next := current.FieldByName(token)
			if !next.IsValid() {
				return nil, fmt.Errorf("field %s not found in struct %s in field path %s", token, current.Type().Name(), path)
			}
			if !next.CanInterface() {
				return nil, fmt.Errorf("field %s in struct %s is not exported", token, current.Type().Name())
			}
			current = next

		default:
			return nil, fmt.Errorf("cannot traverse field %s: expected struct or map but got %s in field path %s", token, current.Kind(), path)
		}
	}

	return current.Interface(), nil
}

// Set assigns value to the exported field key of the struct pointed by target.
//
// A nil value sets the zero value of the field.
func Set(target any, key string, value any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("cannot set field %s: target %T is not a non-nil pointer", key, target)
	}
	structVal := Deref(ptr)
	if structVal.Kind() != reflect.Struct {
		return fmt.Errorf("cannot set field %s: target %T does not point to a struct", key, target)
	}

	field := structVal.FieldByName(key)
	if !field.IsValid() {
		return fmt.Errorf("field %s not found in struct %s", key, structVal.Type().Name())
	}
	if !field.CanSet() {
		return fmt.Errorf("field %s in struct %s cannot be set", key, structVal.Type().Name())
	}

	converted, err := Assignable(value, field.Type())
	if err != nil {
		return fmt.Errorf("cannot set field %s:\n\t%w", key, err)
	}
	field.Set(converted)
	return nil
}

// Assignable turns value into a reflect.Value assignable to target.
//
// nil gives the zero value, and []any is converted element by element into a typed slice.
func Assignable(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(target) {
		return val, nil
	}

	if items, ok := value.([]any); ok && target.Kind() == reflect.Slice {
		slice := reflect.MakeSlice(target, len(items), len(items))
		for i, item := range items {
			elem, err := Assignable(item, target.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d:\n\t%w", i, err)
			}
			slice.Index(i).Set(elem)
		}
		return slice, nil
	}

	if val.Type().ConvertibleTo(target) && val.Kind() == target.Kind() {
		return val.Convert(target), nil
	}

	return reflect.Value{}, fmt.Errorf("value of type %s is not assignable to %s", val.Type(), target)
}

// Walk visits every exported field of typ (recursively through structs and pointers to structs)
// with its dotted path and its declared type.
func Walk(typ reflect.Type, visit func(path string, fieldTyp reflect.Type)) {
	walk(typ, nil, visit, map[reflect.Type]bool{})
}

func walk(typ reflect.Type, path []string, visit func(string, reflect.Type), visiting map[reflect.Type]bool) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || visiting[typ] {
		return
	}
	visiting[typ] = true
	defer delete(visiting, typ)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldPath := append(append([]string{}, path...), field.Name)
		visit(strings.Join(fieldPath, "."), field.Type)
		walk(field.Type, fieldPath, visit, visiting)
	}
}

// Deref dereferences recursively a reflect.Value until it reaches a non-pointer or non-interface value
func Deref(value reflect.Value) reflect.Value {
	if value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		return Deref(value.Elem())
	}
	return value
}
