// Command devtoken mints a bearer token for local use. The token identifies
// the actor recorded when suggestions are marked paid or confirmed.
//
//	JWT_SECRET=dev go run ./cmd/devtoken -user 1 -name Alice
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mmynk/racha/internal/auth"
	"github.com/mmynk/racha/internal/config"
)

type tokenEnv struct {
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

func main() {
	if err := run(flag.CommandLine, os.Args[1:], os.Stdout); err != nil {
		config.Exitf("devtoken: %v", err)
	}
}

func run(fs *flag.FlagSet, args []string, out io.Writer) error {
	var cfg tokenEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}

	user := fs.String("user", "", "actor id to embed in the token (required)")
	name := fs.String("name", "", "display name carried in the token")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, *ttl).Generate(*user, *name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
