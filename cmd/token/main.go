// Command token mints a bearer token for the book API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/config"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/router/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	subject := flag.String("subject", "viewer", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if cfg.HTTP.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "token: HTTP_JWT_SECRET is not set")
		os.Exit(1)
	}
	token, claims, err := middleware.NewJWTMaker(cfg.HTTP.JWTSecret).CreateToken(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "token %s expires %s\n", claims.ID, claims.ExpiresAt.Time.Format(time.RFC3339))
	fmt.Println(token)
}
