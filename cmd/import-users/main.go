package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/accounts-backend/config"
	"github.com/ikkim/accounts-backend/internal/app/repository"
	"github.com/ikkim/accounts-backend/internal/app/service"
	"github.com/ikkim/accounts-backend/internal/db"
	"github.com/ikkim/accounts-backend/internal/session"
	"github.com/ikkim/accounts-backend/pkg/util"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/import-users/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readUsersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total users to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// registration never touches sessions
	sessions := session.NewManager(session.NewMemoryStore(nil), cfg.Session.TTL, nil)
	authService := service.NewAuthService(
		repository.NewStore(db.GetDB()),
		util.NewBcryptHasher(cfg.Security.BcryptCost),
		sessions,
	)

	summary := importUsers(context.Background(), authService, rows)

	fmt.Println("Import completed!")
	fmt.Printf("  Imported: %d\n", summary.Imported)
	fmt.Printf("  Skipped:  %d\n", len(summary.Skipped))
	for _, skipped := range summary.Skipped {
		fmt.Printf("    row %d (%s): %s\n", skipped.Row, skipped.Email, skipped.Reason)
	}
}
