// Command librarian-token prints a signed token authorizing catalog and rental changes.
//
//	AUTH_SECRET=... librarian-token -name alice
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmynk/booklibrary/internal/auth"
	"github.com/mmynk/booklibrary/internal/config"
)

func main() {
	name := flag.String("name", "", "librarian name recorded in the token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.AuthEnabled() {
		fmt.Fprintln(os.Stderr, "AUTH_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL).Generate(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
