// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"os"
	"strings"

	"pgbridge/internal/keychain"
)

// resolveDSN locates the configured connection string. Environment variables
// win over the keychain entry saved by `pgbridge connect`.
func resolveDSN() (string, error) {
	if env := strings.TrimSpace(os.Getenv("PGBRIDGE_DSN")); env != "" {
		return env, nil
	}
	if env := strings.TrimSpace(os.Getenv("DATABASE_URL")); env != "" {
		return env, nil
	}

	km, err := keychain.GetManager()
	if err != nil {
		return "", errors.New("secure storage is not available on this system; set PGBRIDGE_DSN or DATABASE_URL")
	}
	saved, err := km.LoadDBDSN()
	if err != nil || strings.TrimSpace(saved) == "" {
		return "", errors.New("no database connection configured; run 'pgbridge connect' or set PGBRIDGE_DSN")
	}
	return strings.TrimSpace(saved), nil
}
