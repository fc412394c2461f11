// File: cmd/admintoken/main.go
package main

import (
	"flag"
	"fmt"
	"log"

	"payment-relay/internal/config"
	"payment-relay/internal/infra/api"
)

// Prints a bearer token for the /api/admin routes.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to admin.token_ttl)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Admin.JWTSecret == "" {
		log.Fatal("admin.jwt_secret (ADMIN_JWT_SECRET) is not set")
	}
	if *ttl > 0 {
		cfg.Admin.TokenTTL = *ttl
	}

	tok, err := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL).Mint(*subject)
	if err != nil {
		log.Fatalf("mint: %v", err)
	}
	fmt.Println(tok)
}
