package auth

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// FXModule is an fx.Module that provides the token validator as both
// *TokenValidator and the Verifier interface.
var FXModule = fx.Module("auth",
	fx.Provide(
		NewTokenValidatorWithDI,
		fx.Annotate(
			func(v *TokenValidator) Verifier { return v },
			fx.As(new(Verifier)),
		),
	),
)

// AuthParams groups the dependencies needed to create a TokenValidator
type AuthParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewTokenValidatorWithDI creates the token validator using dependency injection.
func NewTokenValidatorWithDI(params AuthParams) (*TokenValidator, error) {
	v, err := NewTokenValidator(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		v.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		v.WithObserver(params.Observer)
	}
	return v, nil
}
