package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	apperrors "github.com/voces/voces/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// LoadSigningSecret returns the token signing secret. Without keeperURI the configured
// value is the secret itself. With keeperURI the value is base64 ciphertext decrypted by
// the keeper (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://).
func LoadSigningSecret(ctx context.Context, value, keeperURI string) ([]byte, error) {
	if keeperURI == "" {
		return checkSecretLength([]byte(value))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, apperrors.Wrap(err, "signing secret ciphertext is not valid base64")
	}

	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt signing secret")
	}

	return checkSecretLength(plaintext)
}

func checkSecretLength(secret []byte) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	return secret, nil
}
