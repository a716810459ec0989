package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/auth"
	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/logger"
)

// ProvideTokenIssuer resolves the signing key and builds the configured token issuer.
func ProvideTokenIssuer(i do.Injector) (auth.TokenIssuer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.ResolveKey(cfg.Auth.Secret, cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.TokenFormat, key, cfg.Auth.TokenDuration)
	if err != nil {
		return nil, err
	}

	log.Info("Token issuer ready",
		"format", cfg.Auth.TokenFormat,
		"token_duration", cfg.Auth.TokenDuration,
		"key_from_config", cfg.Auth.Secret != "",
	)

	return issuer, nil
}
