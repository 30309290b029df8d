package youmiya

import (
	"fmt"

	"github.com/a-peyrard/youmiya/fieldpath"
)

// FromConfig is a factory reading the dotted path of the configuration bound to configToken.
func FromConfig[C any, T any](configToken Token, path string) FactoryFunc {
	return func(ctx ResolutionContext) (any, error) {
		resolved, err := ctx.Container.Resolve(configToken, WithContext(ctx), func(rc *ResolutionContext) {
			rc.Optional = false
			rc.Multiple = false
			rc.Lazy = false
		})
		if err != nil {
			return nil, fmt.Errorf("unable to resolve config %s:\n\t%w", TokenString(configToken), err)
		}
		cfg, err := convert[C](resolved)
		if err != nil {
			return nil, err
		}
		raw, err := fieldpath.Get(cfg, path)
		if err != nil {
			return nil, fmt.Errorf("unable to get value from config %T:\n\t%w", cfg, err)
		}
		value, ok := raw.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("config value at %s is not of type %T", path, zero)
		}
		return value, nil
	}
}
