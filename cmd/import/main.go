// Bulk loader: wipes the store and reloads it from the games catalogue and
// rental history files. Destructive by design; run it to (re)initialize.
package main

import (
	"log"

	"gamerental/pkg/database"
	"gamerental/pkg/importer"
	"gamerental/pkg/models"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	gamesFile := pflag.String("games", "Game_Info.txt", "path to the games catalogue file")
	rentalsFile := pflag.String("rentals", "Rental_History.txt", "path to the rental history file")
	strict := pflag.Bool("strict", false, "fail on malformed rows instead of skipping them")
	pflag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db := database.InitGameRentalDB()

	opts := importer.Options{Strict: *strict}
	if err := importer.Reinitialize(db, *gamesFile, *rentalsFile, opts); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	var games, rentals int64
	db.Model(&models.GameCopy{}).Count(&games)
	db.Model(&models.RentalRecord{}).Count(&rentals)
	log.Printf("Import complete: %d game copies, %d rental records", games, rentals)
}
