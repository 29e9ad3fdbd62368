// Command adminkey prints the bcrypt hash of an admin secret for the
// ADMIN_KEY_HASH environment variable.
//
//	go run ./cmd/adminkey -key "the-shared-secret"
package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	key := flag.String("key", "", "admin secret to hash")
	flag.Parse()

	if *key == "" {
		log.Fatal("usage: adminkey -key <secret>")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*key), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	fmt.Printf("ADMIN_KEY_HASH=%s\n", hash)
}
