// Command migrate applies directory database migrations.
package main

import (
	"flag"
	"log"

	"mallops-console/internal/config"
	"mallops-console/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.Fatalf("migrate %s: %v", *direction, err)
	}
	log.Printf("migrations %s complete", *direction)
}
