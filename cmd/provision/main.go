// Command provision prints the secrets an operator configures for the admin console:
// a password hash and a fresh TOTP secret with its otpauth:// URI for authenticator apps.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"riverdash-admin/core"
)

func main() {
	username := flag.String("username", core.DefaultAdminUsername, "admin username")
	password := flag.String("password", "", "admin password (generated when empty)")
	legacy := flag.Bool("legacy-hash", false, "emit unsalted SHA-1 hash instead of bcrypt")
	issuer := flag.String("issuer", "riverdash", "issuer shown in authenticator apps")
	out := flag.String("out", "", "write env assignments to this file (mode 0600) instead of stdout")
	flag.Parse()

	p, err := core.ProvisionAdmin(core.ProvisionOptions{
		Username: *username,
		Password: *password,
		Legacy:   *legacy,
		Issuer:   *issuer,
	})
	if err != nil {
		log.Fatalf("provision failed: %v", err)
	}

	if *out != "" {
		if err := p.WriteEnvFile(*out); err != nil {
			log.Fatalf("failed to write %s: %v", *out, err)
		}
		log.Printf("credentials written to %s", *out)
	} else {
		fmt.Print(p.EnvFile())
	}

	if p.GeneratedPassword {
		fmt.Fprintf(os.Stderr, "generated password: %s\n", p.Password)
	}
	fmt.Fprintf(os.Stderr, "authenticator URI: %s\n", p.TOTPURL)
}
