// Command migrate applies or rolls back the embedded schema migrations.
package main

import (
	"flag"
	"fmt"
	"os"

	"ridelink/internal/platform/config"
	"ridelink/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	dsn := flag.String("dsn", "", "Postgres URL. Defaults to DATABASE_URL.")
	flag.Parse()

	if *dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		*dsn = cfg.DatabaseURL
	}

	if err := database.Migrate(*dsn, database.Direction(*direction)); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("migrate %s: done\n", *direction)
}
