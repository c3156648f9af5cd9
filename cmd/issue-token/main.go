package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/logger"
	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

// issue-token mints access tokens with the server's JWT_SECRET.
//
//	issue-token -admin ops@example.com
//	issue-token -email jan@example.com -name "Jan Nowak" -hid PL-42 -manager-email boss@example.com
func main() {
	var (
		admin        = flag.String("admin", "", "Issue an admin token for this email")
		email        = flag.String("email", "", "Examinee email")
		name         = flag.String("name", "", "Examinee full name")
		hid          = flag.String("hid", "", "Examinee hierarchical ID")
		managerName  = flag.String("manager-name", "", "Manager name (optional)")
		managerEmail = flag.String("manager-email", "", "Manager email (optional)")
	)
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	authService := service.NewAuthService(cfg)

	var (
		token string
		err   error
	)
	switch {
	case *admin != "":
		token, err = authService.IssueAdminToken(strings.TrimSpace(*admin))
	case *email != "":
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*hid) == "" {
			fmt.Println("Error: -name and -hid are required for examinee tokens")
			os.Exit(2)
		}
		token, err = authService.IssueExamineeToken(model.Examinee{
			Email:          strings.TrimSpace(*email),
			FullName:       strings.TrimSpace(*name),
			HierarchicalID: strings.TrimSpace(*hid),
			ManagerName:    strings.TrimSpace(*managerName),
			ManagerEmail:   strings.TrimSpace(*managerEmail),
		})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	fmt.Println(token)
}
