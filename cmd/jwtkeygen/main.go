package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// Prints a JWT_KEYS entry; append it to the list and point JWT_CURRENT_KID at
// the new kid to rotate.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: jwtkeygen <kid>")
		os.Exit(2)
	}
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		fmt.Fprintln(os.Stderr, "rand:", err)
		os.Exit(1)
	}
	fmt.Printf("%s:%s\n", os.Args[1], hex.EncodeToString(b[:]))
}
