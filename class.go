package youmiya

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"

	"github.com/a-peyrard/youmiya/fieldpath"
	"github.com/a-peyrard/youmiya/option"
)

type (
	// Class is a constructible type: a constructor function plus the declaration of its dependencies.
	//
	// The constructor must either return the instance, or the instance and an error. A *Class is itself a
	// valid token, resolving an unregistered class builds a transient instance of it.
	Class struct {
		name        string
		constructor reflect.Value
		fnTyp       reflect.Type
		provides    reflect.Type

		params     map[int]dependency
		properties []propertyDependency
		overlay    map[any][]ResolveOption
		autoWire   bool
	}

	ClassOptions struct {
		name       string
		params     map[int]dependency
		properties []propertyDependency
		overlay    map[any][]ResolveOption
		autoWire   bool
	}

	ClassOption = option.Option[ClassOptions]
)

// NewClass wraps a constructor function.
func NewClass(constructor any, opts ...ClassOption) (*Class, error) {
	if constructor == nil {
		return nil, errors.New("constructor must be a function, got nil")
	}
	t := reflect.TypeOf(constructor)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	if t.NumOut() != 1 && t.NumOut() != 2 {
		return nil, errors.New("constructor must either return the instance and an error, or just the instance")
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, errors.New("if constructor returns two elements, it must return an error as the second element")
	}

	fnName := runtime.FuncForPC(reflect.ValueOf(constructor).Pointer()).Name()
	options := option.Build(
		&ClassOptions{
			name:    filepath.Base(fnName),
			params:  make(map[int]dependency),
			overlay: make(map[any][]ResolveOption),
		},
		opts...,
	)

	for index := range options.params {
		if index < 0 || (index >= t.NumIn() && !t.IsVariadic()) {
			return nil, fmt.Errorf("parameter %d is out of range for constructor %s with %d parameters", index, options.name, t.NumIn())
		}
	}

	return &Class{
		name:        options.name,
		constructor: reflect.ValueOf(constructor),
		fnTyp:       t,
		provides:    t.Out(0),
		params:      options.params,
		properties:  options.properties,
		overlay:     options.overlay,
		autoWire:    options.autoWire,
	}, nil
}

// MustClass is like NewClass but panics on error.
func MustClass(constructor any, opts ...ClassOption) *Class {
	class, err := NewClass(constructor, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create class from %T:\n\t%v", constructor, err))
	}
	return class
}

// Named overrides the display name of the class (the constructor name by default).
func Named(name string) ClassOption {
	return func(opts *ClassOptions) {
		opts.name = name
	}
}

// Dependencies declares the constructor parameters positionally.
func Dependencies(dependencies ...dependency) ClassOption {
	return func(opts *ClassOptions) {
		for i, dep := range dependencies {
			opts.params[i] = dep
		}
	}
}

// Param declares the dependency injected at the given parameter index.
func Param(index int, dep dependency) ClassOption {
	return func(opts *ClassOptions) {
		opts.params[index] = dep
	}
}

// Property declares a dependency assigned to an exported field of the constructed struct.
func Property(field string, dep dependency) ClassOption {
	return func(opts *ClassOptions) {
		opts.properties = append(opts.properties, propertyDependency{key: field, dependency: dep})
	}
}

// Options adds resolution options for a parameter index (int) or a property name (string),
// applied after the options of the declaration itself.
func Options(key any, resolveOpts ...ResolveOption) ClassOption {
	return func(opts *ClassOptions) {
		opts.overlay[key] = append(opts.overlay[key], resolveOpts...)
	}
}

// AutoWire infers the tokens of every undeclared parameter from its type, and injects the fields
// tagged with `inject`. It requires a MetadataReader with reflection support.
func AutoWire() ClassOption {
	return func(opts *ClassOptions) {
		opts.autoWire = true
	}
}

func (c *Class) Name() string {
	return c.name
}

// Provides returns the type of the instances built by the class.
func (c *Class) Provides() reflect.Type {
	return c.provides
}

func (c *Class) String() string {
	return fmt.Sprintf("Class(%s)", c.name)
}

func (c *Class) numParams() int {
	return c.fnTyp.NumIn()
}

func (c *Class) paramType(index int) reflect.Type {
	if c.fnTyp.IsVariadic() && index >= c.fnTyp.NumIn()-1 {
		return c.fnTyp.In(c.fnTyp.NumIn() - 1).Elem()
	}
	return c.fnTyp.In(index)
}

func (c *Class) declaredParams() []int {
	indexes := make([]int, 0, len(c.params))
	for index := range c.params {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

func (c *Class) construct(args []any) (instance any, err error) {
	required := c.fnTyp.NumIn()
	if c.fnTyp.IsVariadic() {
		required--
	}
	if len(args) > c.fnTyp.NumIn() && !c.fnTyp.IsVariadic() {
		return nil, fmt.Errorf("too many arguments for %s: got %d, expected %d", c, len(args), c.fnTyp.NumIn())
	}

	in := make([]reflect.Value, 0, max(len(args), required))
	for i := 0; i < max(len(args), required); i++ {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		val, err := fieldpath.Assignable(arg, c.paramType(i))
		if err != nil {
			return nil, fmt.Errorf("cannot use argument %d for %s:\n\t%w", i, c, err)
		}
		in = append(in, val)
	}

	// panic recovery, as `Call` can panic if the constructor has a panic
	var results []reflect.Value
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic calling constructor of %s: %v", c, r)
			}
		}()
		results = c.constructor.Call(in)
	}()
	if err != nil {
		return nil, err
	}

	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}
