package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core/session"
)

// mintoken mints a signed session token for local development against a
// backend with no login UI of its own.
func (cli *commandLine) mintoken(args []string) error {
	fs := flag.NewFlagSet("mintoken", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	subject := fs.String("subject", "", "The user id the token identifies.")
	role := fs.String("role", session.RoleAdmin, "The role claim.")
	store := fs.String("store", "", "The tenant (store/school) id claim, if any.")
	ttl := fs.Duration("ttl", 0, "Token lifetime; defaults to the configured expiration delta.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		fs.Usage()
		return errHelp
	}
	if !session.IsKnownRole(*role) {
		return errors.Errorf("unknown role %q", *role)
	}
	if cli.conf.SecretKey == "" {
		return errors.New("no secret key configured; cannot sign tokens")
	}

	conf := *cli.conf
	if *ttl > 0 {
		conf.Server.JWTExpirationDelta = *ttl
	}

	claims := session.NewClaims(&conf, *subject, *role, *store)
	token, err := session.GenerateToken([]byte(conf.SecretKey), claims)
	if err != nil {
		return errors.Wrap(err, "minting token")
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}
