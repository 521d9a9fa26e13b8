package app

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/notes/pkg/cryptox"
	"github.com/aussiebroadwan/notes/pkg/idx"
	"github.com/aussiebroadwan/notes/pkg/jwtx"
)

// InitSigningKeys builds the token key pair for the configured algorithm.
//
// Without a configured secret or key file (dev only, see Config.Validate) a
// random key is generated. Every token issued before a restart is then
// rejected.
func InitSigningKeys(cfg Config, logger *slog.Logger) (jwtx.KeyPair, error) {
	switch cfg.Algorithm {
	case AlgorithmEdDSA:
		key, err := eddsaKey(cfg, logger)
		if err != nil {
			return nil, err
		}
		return jwtx.NewEdDSA(idx.New().String(), key, cfg.Issuer)

	case AlgorithmHS256:
		secret := []byte(cfg.JWTSecret)
		if len(secret) == 0 {
			var err error
			if secret, err = cryptox.GenerateSecret(jwtx.MinHS256SecretSize); err != nil {
				return nil, err
			}
			logger.Warn("NOTES_JWT_SECRET not set, using an ephemeral secret")
		}
		return jwtx.NewHS256(secret, cfg.Issuer)
	}

	return nil, fmt.Errorf("unsupported algorithm %q", cfg.Algorithm)
}

func eddsaKey(cfg Config, logger *slog.Logger) (ed25519.PrivateKey, error) {
	if cfg.SigningKeyFile != "" {
		key, err := cryptox.LoadEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return nil, err
		}
		logger.Info("signing key loaded", slog.String("path", cfg.SigningKeyFile))
		return key, nil
	}

	logger.Warn("NOTES_SIGNING_KEY_FILE not set, using an ephemeral key")
	pemBytes, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	return cryptox.ParseEd25519Key(pemBytes)
}
