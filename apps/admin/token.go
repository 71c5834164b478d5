package main

import (
	"fmt"
	"time"

	echoapi "github.com/trezcool/foyer/apps/api/echo"
)

// token prints a signed API token for operators and scripts.
func (cli *commandLine) token(subject, username, email string, roles []string, ttl time.Duration) error {
	for _, r := range roles {
		if r != echoapi.RoleAdmin && r != echoapi.RoleStaff {
			return fmt.Errorf("unknown role %q", r)
		}
	}
	claims := echoapi.NewClaims(cli.conf.AppName, subject, username, email, roles, ttl)
	token, err := echoapi.GenerateToken(claims, cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
