// Command sessionctl mints and inspects session tokens from the command
// line. Useful for seeding integration tests and debugging tokens pulled
// from browser cookies.
//
//	# mint a token for a username
//	AUTH_SECRET=0123456789abcdef0123456789abcdef sessionctl sign -user alice
//
//	# mint a legacy five-field token
//	sessionctl sign -secret ... -legacy "u100,pay-pass,conn-7,Kim,100"
//
//	# verify and inspect a token
//	sessionctl verify -secret ... -token "alice:1700028800:abe5..."
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/x-ordo/WPaymentManager-sub005/token"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "sign":
		err = runSign(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sessionctl <sign|verify> [flags]")
	fmt.Fprintln(os.Stderr, "  sign   -user <name> | -legacy <id,pass,conn,name,class> [-secret ...] [-max-age 8h]")
	fmt.Fprintln(os.Stderr, "  verify -token <token> [-secret ...]")
}

func resolveSecret(flagValue string) ([]byte, error) {
	secret := flagValue
	if secret == "" {
		secret = os.Getenv("AUTH_SECRET")
	}
	if secret == "" {
		return nil, errors.New("no secret: pass -secret or set AUTH_SECRET")
	}
	return []byte(secret), nil
}

func runSign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	var (
		secretFlag = fs.String("secret", "", "HMAC secret; defaults to AUTH_SECRET env")
		user       = fs.String("user", "", "username for a single-field payload")
		legacy     = fs.String("legacy", "", "comma-separated id,pass,connection,name,class")
		maxAge     = fs.Duration("max-age", token.DefaultMaxAge, "token lifetime")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := resolveSecret(*secretFlag)
	if err != nil {
		return err
	}

	var payload token.Payload
	switch {
	case *user != "" && *legacy != "":
		return errors.New("pass either -user or -legacy, not both")
	case *user != "":
		payload = token.UserPayload{Username: *user}
	case *legacy != "":
		parts := strings.Split(*legacy, ",")
		if len(parts) != 5 {
			return fmt.Errorf("-legacy needs 5 comma-separated fields, got %d", len(parts))
		}
		payload = token.LegacyPayload{
			UserID:       parts[0],
			Pass:         parts[1],
			ConnectionID: parts[2],
			UserName:     parts[3],
			UserClass:    parts[4],
		}
	default:
		return errors.New("pass -user or -legacy")
	}

	tok, err := token.Create(payload, secret, *maxAge, time.Now())
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	fmt.Println(tok)
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		secretFlag = fs.String("secret", "", "HMAC secret; defaults to AUTH_SECRET env")
		tok        = fs.String("token", "", "token to verify")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return errors.New("pass -token")
	}

	secret, err := resolveSecret(*secretFlag)
	if err != nil {
		return err
	}

	payload, err := token.VerifyToken(*tok, secret, time.Now())
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			// Expiry is the only diagnostic the token gives up: show it.
			if exp, expErr := token.ExpiresAt(*tok); expErr == nil {
				return fmt.Errorf("token expired at %s", exp.UTC().Format(time.RFC3339))
			}
		}
		return fmt.Errorf("verify: %w", err)
	}

	switch p := payload.(type) {
	case token.UserPayload:
		fmt.Printf("payload: user\n  username: %s\n", p.Username)
	case token.LegacyPayload:
		fmt.Printf("payload: legacy\n  user id: %s\n  connection: %s\n  name: %s\n  class: %s\n",
			p.UserID, p.ConnectionID, p.UserName, p.UserClass)
	}

	if exp, err := token.ExpiresAt(*tok); err == nil {
		fmt.Printf("expires: %s (%s from now)\n",
			exp.UTC().Format(time.RFC3339), time.Until(exp).Round(time.Second))
	}

	return nil
}
