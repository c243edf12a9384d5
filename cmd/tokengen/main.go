// Command tokengen mints a credential for local testing against a server
// sharing the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"skillconnect/internal/auth"
	"skillconnect/internal/config"
)

func main() {
	user := flag.String("user", "", "user id to put in the subject claim")
	name := flag.String("name", "", "display name")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -user <id> [-name <name>] [-ttl 24h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	authn, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := authn.Issue(*user, *name, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
