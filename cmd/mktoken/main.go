// Command mktoken signs an operator access token for the admin API.
// There is no interactive login; operators get tokens provisioned out
// of band and the API only validates them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"leadintake_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	var (
		operatorID = flag.String("operator", "", "operator uuid, defaults to a new random id")
		roleList   = flag.String("roles", "operator", "comma separated roles to embed in the token")
		ttl        = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config: " + err.Error())
	}

	secret := cfg.GetJWTAccessSecret()
	if secret == "" {
		fatal("JWT_ACCESS_SECRET is not configured")
	}

	id := uuid.New()
	if *operatorID != "" {
		parsed, err := uuid.Parse(*operatorID)
		if err != nil {
			fatal("invalid operator id: " + err.Error())
		}
		id = parsed
	}

	var roles []string
	for _, role := range strings.Split(*roleList, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}

	claims := jwt.MapClaims{
		"sub":   id.String(),
		"type":  "access",
		"roles": roles,
		"exp":   time.Now().Add(*ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fatal("failed to sign token: " + err.Error())
	}

	fmt.Fprintln(os.Stderr, "operator id:", id)
	fmt.Fprintln(os.Stderr, "expires:", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(signed)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
