// Command migrate runs the schema migrations against the configured
// database and exits.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/rackden/rackden/config"
	"github.com/rackden/rackden/internal/db"
)

func main() {
	_ = godotenv.Load()

	_, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", db.DefaultHost),
		User:     config.GetEnv("DB_USER", db.DefaultUser),
		Password: config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:   config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:     config.GetEnvInt("DB_PORT", db.DefaultPort),
	})
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migrations complete")
}
