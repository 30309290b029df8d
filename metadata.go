package youmiya

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/a-peyrard/youmiya/set"
)

const injectTag = "inject"

type (
	ParamDescriptor struct {
		Token   Token
		Index   int
		Options []ResolveOption
	}

	PropertyDescriptor struct {
		Token   Token
		Key     string
		Options []ResolveOption
	}

	// DescriptorSet lists what must be injected in a class. Options holds per-key overlays, keyed by
	// parameter index (int) or property name (string), applied over the options of the descriptor.
	DescriptorSet struct {
		Params     []ParamDescriptor
		Properties []PropertyDescriptor
		Options    map[any][]ResolveOption
	}

	// MetadataReader extracts the descriptor set of a class. The container only reads what it returns.
	MetadataReader interface {
		HasReflectionSupport() bool
		Describe(class *Class) (DescriptorSet, error)
	}

	// ReflectMetadata serves explicit declarations and infers the missing tokens from the declared
	// types of parameters and fields, using `reflect.Type` tokens.
	ReflectMetadata struct{}

	// ExplicitMetadata only serves explicit declarations and fails with ErrNoReflectionSupport when a
	// class asks for inference.
	ExplicitMetadata struct{}
)

func (s DescriptorSet) arity() int {
	arity := 0
	for _, p := range s.Params {
		if p.Index+1 > arity {
			arity = p.Index + 1
		}
	}
	return arity
}

func (ReflectMetadata) HasReflectionSupport() bool {
	return true
}

func (ReflectMetadata) Describe(class *Class) (DescriptorSet, error) {
	descriptors := DescriptorSet{Options: class.overlay}

	declared := class.declaredParams()
	for _, index := range declared {
		dep := class.params[index]
		token := dep.token
		if dep.auto {
			token = class.paramType(index)
		}
		descriptors.Params = append(descriptors.Params, ParamDescriptor{Token: token, Index: index, Options: dep.options})
	}

	if class.autoWire {
		inferable := class.numParams()
		if class.fnTyp.IsVariadic() {
			inferable--
		}
		for index := 0; index < inferable; index++ {
			if _, found := class.params[index]; found {
				continue
			}
			descriptors.Params = append(descriptors.Params, ParamDescriptor{Token: class.paramType(index), Index: index})
		}
	}

	declaredProps := set.New[string]()
	for _, prop := range class.properties {
		declaredProps.Add(prop.key)
		token := prop.token
		if prop.auto {
			field, found := structField(class.provides, prop.key)
			if !found {
				return DescriptorSet{}, fmt.Errorf("cannot infer token of property %s: no such field in %s", prop.key, class.provides)
			}
			token = field.Type
		}
		descriptors.Properties = append(descriptors.Properties, PropertyDescriptor{Token: token, Key: prop.key, Options: prop.options})
	}

	if class.autoWire {
		tagged, err := taggedProperties(class.provides)
		if err != nil {
			return DescriptorSet{}, fmt.Errorf("failed to read inject tags of %s:\n\t%w", class, err)
		}
		for _, prop := range tagged {
			if !declaredProps.Contains(prop.Key) {
				descriptors.Properties = append(descriptors.Properties, prop)
			}
		}
	}

	return descriptors, nil
}

func (ExplicitMetadata) HasReflectionSupport() bool {
	return false
}

func (ExplicitMetadata) Describe(class *Class) (DescriptorSet, error) {
	if class.autoWire {
		return DescriptorSet{}, fmt.Errorf("%s is auto wired: %w", class, ErrNoReflectionSupport)
	}

	descriptors := DescriptorSet{Options: class.overlay}
	for _, index := range class.declaredParams() {
		dep := class.params[index]
		if dep.auto {
			return DescriptorSet{}, fmt.Errorf("parameter %d of %s has no explicit token: %w", index, class, ErrNoReflectionSupport)
		}
		descriptors.Params = append(descriptors.Params, ParamDescriptor{Token: dep.token, Index: index, Options: dep.options})
	}
	for _, prop := range class.properties {
		if prop.auto {
			return DescriptorSet{}, fmt.Errorf("property %s of %s has no explicit token: %w", prop.key, class, ErrNoReflectionSupport)
		}
		descriptors.Properties = append(descriptors.Properties, PropertyDescriptor{Token: prop.token, Key: prop.key, Options: prop.options})
	}
	return descriptors, nil
}

func structField(typ reflect.Type, name string) (reflect.StructField, bool) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	return typ.FieldByName(name)
}

// taggedProperties reads fields tagged `inject:"[name][,optional][,multiple][,lazy]"`; without a name
// the token is the field type.
func taggedProperties(typ reflect.Type) ([]PropertyDescriptor, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, nil
	}

	var props []PropertyDescriptor
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, found := field.Tag.Lookup(injectTag)
		if !found {
			continue
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("field %s is tagged with %s but is not exported", field.Name, injectTag)
		}

		parts := strings.Split(tag, ",")
		var token Token = field.Type
		if name := strings.TrimSpace(parts[0]); name != "" {
			token = name
		}
		var opts []ResolveOption
		for _, flag := range parts[1:] {
			switch strings.TrimSpace(flag) {
			case "optional":
				opts = append(opts, Optional())
			case "multiple":
				opts = append(opts, Multiple())
			case "lazy":
				opts = append(opts, Lazily())
			case "":
			default:
				return nil, fmt.Errorf("unknown %s flag %q on field %s", injectTag, flag, field.Name)
			}
		}
		props = append(props, PropertyDescriptor{Token: token, Key: field.Name, Options: opts})
	}
	return props, nil
}
