package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/config"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
)

// createtoken prints a development access token for the compensation API.
func main() {
	userID := flag.String("user", "dev-user", "user_id claim")
	companyID := flag.String("company", "", "company_id claim (defaults to SF_COMPANY_ID)")
	role := flag.String("role", "COMPENSATION_ADMIN", "role claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *companyID == "" {
		*companyID = cfg.SuccessFactors.CompanyID
	}

	svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating JWT service:", err)
		os.Exit(1)
	}

	token, expiresAt, err := svc.GenerateAccessToken(jwt.Claims{UserID: *userID, CompanyID: *companyID, Role: *role})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
