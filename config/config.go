// Package config loads typed configuration structs from the environment, optional .env files and an
// optional configuration file.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/a-peyrard/youmiya/option"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Options struct {
		prefix      string
		dotEnvFiles []string
		configFile  string
		skipChecks  bool
	}

	Option = option.Option[Options]

	// WithDefault is implemented by configuration structs filling their unset fields.
	WithDefault interface {
		ApplyDefault()
	}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WithEnvPrefix(prefix string) Option {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithDotEnv reads variables from .env files. Variables of the process environment take precedence.
func WithDotEnv(files ...string) Option {
	return func(opts *Options) {
		opts.dotEnvFiles = append(opts.dotEnvFiles, files...)
	}
}

// WithConfigFile reads a configuration file (yaml, json, toml...), the environment takes precedence.
func WithConfigFile(path string) Option {
	return func(opts *Options) {
		opts.configFile = path
	}
}

// WithoutValidation skips the `validate` tags checks.
func WithoutValidation() Option {
	return func(opts *Options) {
		opts.skipChecks = true
	}
}

func Load[T any](opts ...Option) (*T, error) {
	options := option.Build(&Options{}, opts...)

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if options.configFile != "" {
		v.SetConfigFile(options.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s:\n\t%w", options.configFile, err)
		}
	}

	var vT T
	envs := make(map[string]string)
	bindEnvs(v, options.prefix, reflect.New(reflect.TypeOf(vT)).Elem().Interface(), envs)

	if len(options.dotEnvFiles) > 0 {
		dotEnv, err := godotenv.Read(options.dotEnvFiles...)
		if err != nil {
			return nil, fmt.Errorf("unable to read env files %v:\n\t%w", options.dotEnvFiles, err)
		}
		for key, env := range envs {
			if _, set := os.LookupEnv(env); set {
				continue
			}
			if value, found := dotEnv[env]; found {
				v.Set(key, value)
			}
		}
	}

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	prepare(reflect.ValueOf(&vT))

	if !options.skipChecks {
		if err := validate.Struct(&vT); err != nil {
			return nil, fmt.Errorf("invalid config %T:\n\t%w", vT, err)
		}
	}

	return &vT, nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](opts ...Option) *T {
	conf, err := Load[T](opts...)
	if err != nil {
		panic(err)
	}
	return conf
}

// bindEnvs binds every leaf field to its environment variable and records the binding in envs.
func bindEnvs(viperI *viper.Viper, envPrefix string, myStruct any, envs map[string]string, parts ...string) {
	ifv := reflect.ValueOf(myStruct)
	ift := reflect.TypeOf(myStruct)
	if ift.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		if !t.IsExported() {
			continue
		}
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = t.Name
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(viperI, envPrefix, v.Interface(), envs, append(parts, tv)...)
		case reflect.Pointer:
			if t.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(viperI, envPrefix, reflect.Zero(t.Type.Elem()).Interface(), envs, append(parts, tv)...)
			}
		default:
			key := strings.Join(append(parts, tv), ".")
			env := mergeWithEnvPrefix(envPrefix, strings.Join(append(parts, screamingSnake(tv)), "_"))
			envs[key] = env
			_ = viperI.BindEnv(key, env)
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}

// screamingSnake turns "CustomerId" into "CUSTOMER_ID".
func screamingSnake(in string) string {
	in = strings.TrimSpace(in)

	var sb strings.Builder
	sb.Grow(len(in) + len(in)/3)
	for i, b := range []byte(in) {
		separate := false
		switch {
		case 'a' <= b && b <= 'z':
			b -= 'a' - 'A'
		case 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
			separate = true
		case b == '_' || b == '-':
			if i > 0 {
				sb.WriteByte('_')
			}
			continue
		}
		if i > 0 && separate {
			sb.WriteByte('_')
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// prepare allocates nil nested struct pointers, then applies the defaults, parents first.
func prepare(val reflect.Value) {
	if val.Kind() == reflect.Pointer && val.IsNil() {
		if !val.CanSet() || val.Type().Elem().Kind() != reflect.Struct {
			return
		}
		val.Set(reflect.New(val.Type().Elem()))
	}
	if val.CanInterface() {
		if withDefault, ok := val.Interface().(WithDefault); ok && !(val.Kind() == reflect.Pointer && val.IsNil()) {
			withDefault.ApplyDefault()
		}
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < val.NumField(); i++ {
		if val.Type().Field(i).IsExported() {
			prepare(val.Field(i))
		}
	}
}
