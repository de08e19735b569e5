package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Generates the value of OWNER_PASSWORD_HASH, the bcrypt hash checked when the
// node owner authenticates with basic auth.
// Usage: go run scripts/owner_password_hash.go <password>
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/owner_password_hash.go <password>")
		os.Exit(1)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OWNER_PASSWORD_HASH=%s\n", string(hashedPassword))
}
