// Package main provides a CLI tool for generating bearer tokens for the ridelink API.
// Tokens signed with the dev key will NOT work in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "ridelink/internal/jwt_token"
	id "ridelink/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "ridelink"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Handle    string            `json:"handle"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	handle := flag.String("handle", "", "Registry handle to embed as the token subject (required)")
	key := flag.String("key", "", "Signing key. Defaults to JWT_SIGNING_KEY, then the dev key.")
	issuer := flag.String("issuer", defaultIssuer, "Token issuer")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	h, err := id.ParseHandle(*handle)
	if err != nil {
		fmt.Fprintln(os.Stderr, "a valid -handle is required")
		flag.Usage()
		os.Exit(1)
	}

	signingKey := *key
	if signingKey == "" {
		signingKey = os.Getenv("JWT_SIGNING_KEY")
	}
	keyType := "custom"
	if signingKey == "" {
		signingKey = devSigningKey
		keyType = "dev"
	}

	svc := jwttoken.NewJWTService(signingKey, *issuer, *ttl)
	token, err := svc.Issue(h, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Handle:    h.String(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Bearer Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Handle:      %s\n", h)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/me/inbox")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
