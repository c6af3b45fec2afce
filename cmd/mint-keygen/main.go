// Command mint-keygen generates the service's devnet wallet keypair
// file. Generation is always explicit: an existing file is never
// overwritten.
package main

import (
	"flag"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"

	"github.com/orbital-atlas/mint/wallet"
)

func main() {
	path := flag.String("path", "devnet-wallet.json", "where to write the keypair file")
	flag.Parse()

	if _, err := os.Stat(*path); err == nil {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(*path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wallet file %s exists but is unreadable: %v\n", *path, err)
			os.Exit(1)
		}
		fmt.Println("Wallet already exists:")
		fmt.Printf("  Public key: %s\n", key.PublicKey())
		fmt.Printf("  File: %s\n", *path)
		fmt.Println("\nDelete it to generate a new one.")
		return
	}

	pub, err := wallet.Generate(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("New devnet wallet generated:")
	fmt.Printf("  Public key: %s\n", pub)
	fmt.Printf("  Saved to: %s\n", *path)
	fmt.Println("\nNext: fund it at https://faucet.solana.com")
}
