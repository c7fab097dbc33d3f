package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
)

func main() {
	key := make([]byte, 48)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate jwt key: %v", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(key)

	fmt.Println("Generated jwt signing key:")
	fmt.Println(encoded)
	fmt.Println()
	fmt.Println("Add this to backend/config/private.yaml:")
	fmt.Printf("jwt_key: \"%s\"\n", encoded)
	fmt.Println("or export CM_JWT_KEY. Rotating the key signs out every user.")
}
