package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lizet96/agenda-backend/database"
)

// Uso: migrate [up|down|version|force <version>]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	mg, err := database.NewMigrator(databaseURL)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() { _ = mg.Close() }()

	cmd := "up"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := mg.Up(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("migrations complete")
	case "down":
		if err := mg.Down(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("migrations rolled back")
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid version: %v", err)
		}
		if err := mg.Force(version); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("forced version to %d\n", version)
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}
