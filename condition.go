package youmiya

import (
	"fmt"

	"github.com/spf13/cast"
)

type (
	// condition gates a registration on the value bound to a token at registration time.
	condition struct {
		token    Token
		operator operator
		value    string
	}

	operator = func(string, string) bool

	ConditionBuilder struct {
		token Token
	}
)

//goland:noinspection GoVarAndConstTypeMayBeOmitted
var (
	equals operator = func(a, b string) bool {
		return a == b
	}

	notEquals operator = func(a, b string) bool {
		return a != b
	}
)

// When starts a registration condition on the value resolved for token, e.g. an env variable name
// served by an EnvSource, or a string token bound to a value.
func When(token Token) ConditionBuilder {
	return ConditionBuilder{token: token}
}

func (cb ConditionBuilder) Equals(value string) RegisterOption {
	return cb.with(equals, value)
}

func (cb ConditionBuilder) NotEquals(value string) RegisterOption {
	return cb.with(notEquals, value)
}

func (cb ConditionBuilder) with(op operator, value string) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.conditions = append(
			opts.conditions,
			condition{
				token:    cb.token,
				operator: op,
				value:    value,
			},
		)
	}
}

// evaluate resolves the condition token optionally, a missing value is compared as the empty string.
func (cond condition) evaluate(c *Container) (bool, error) {
	value, err := c.Resolve(cond.token, Optional())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate condition on %s:\n\t%w", TokenString(cond.token), err)
	}
	actual, err := cast.ToStringE(value)
	if err != nil {
		actual = fmt.Sprint(value)
	}
	return cond.operator(actual, cond.value), nil
}

func evaluateConditions(c *Container, conditions []condition) (bool, error) {
	for _, cond := range conditions {
		ok, err := cond.evaluate(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
