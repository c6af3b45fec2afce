package wallet

import (
	"encoding/json"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"
)

// Generate creates a new keypair and writes it to path in
// solana-keygen format (JSON array of 64 secret key bytes). It refuses
// to overwrite an existing file: regeneration is always an explicit
// operation against a path the operator has cleared first.
func Generate(path string) (solana.PublicKey, error) {
	if _, err := os.Stat(path); err == nil {
		return solana.PublicKey{}, fmt.Errorf("wallet file %s already exists; delete it to generate a new one", path)
	} else if !os.IsNotExist(err) {
		return solana.PublicKey{}, fmt.Errorf("stat wallet file: %w", err)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("generate keypair: %w", err)
	}

	raw := []byte(key)
	vals := make([]int, len(raw))
	for i, b := range raw {
		vals[i] = int(b)
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("marshal keypair: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return solana.PublicKey{}, fmt.Errorf("write wallet file: %w", err)
	}
	return key.PublicKey(), nil
}
