package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lizet96/agenda-backend/middleware"
)

// Emite un token de desarrollo firmado con JWT_SECRET.
// Uso: token -user 1 -role admin [-ttl 24h]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}

	userID := flag.Int("user", 0, "user_id del token")
	role := flag.String("role", middleware.RoleCliente, "admin, especialista o cliente")
	ttl := flag.Duration("ttl", 24*time.Hour, "vigencia del token")
	flag.Parse()

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if *userID <= 0 {
		log.Fatal("usage: token -user <id> -role <role>")
	}
	if !middleware.ValidRole(*role) {
		log.Fatalf("unknown role %q", *role)
	}

	token, err := middleware.GenerateJWT(secret, *userID, *role, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
