package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/hash-api-key/main.go <api-key>")
		fmt.Println("Example: go run cmd/hash-api-key/main.go \"admin-key-12345\"")
		os.Exit(1)
	}

	apiKey := os.Args[1]

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ API key hashed!\n\n")
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", string(hash))
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! Only the hash is stored.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
