// Package importer loads the two bulk files (games catalogue and rental
// history) into the store. Parsing is lenient by default: rows with the
// wrong field count are skipped and missing prices default to 0. Strict
// mode turns those into errors instead.
package importer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gamerental/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const gamesFieldCount = 6
const rentalsFieldCount = 4

// Options controls import behavior.
type Options struct {
	// Strict makes arity mismatches and non-numeric prices errors instead
	// of skip/default. Unparseable dates pass through verbatim either way.
	Strict bool
}

// Normalize lowercases, replaces spaces with underscores and strips
// apostrophes. Applied to platform, genre and title at import and insert
// time, and to search patterns, so substring matching lines up.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "'", "")
}

var dateLayouts = []string{"2/1/2006", "1/2/2006"}

// FormatDate normalizes a textual date to dd/mm/yyyy, trying day/month/year
// before month/day/year. Anything else passes through unchanged.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// ParseGamesFile reads the games catalogue file: a header line to discard,
// then "id, platform, genre, title, purchase price, purchase date" rows.
func ParseGamesFile(path string, opts Options) ([]models.GameCopy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open games file: %w", err)
	}
	defer file.Close()

	var copies []models.GameCopy
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		fields := splitFields(scanner.Text())
		if len(fields) != gamesFieldCount {
			if opts.Strict {
				return nil, fmt.Errorf("games file line %d: expected %d fields, got %d", lineNo, gamesFieldCount, len(fields))
			}
			continue
		}

		copyID, err := strconv.Atoi(fields[0])
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("games file line %d: bad copy id %q", lineNo, fields[0])
			}
			continue
		}

		price := 0.0
		if fields[4] != "" {
			price, err = strconv.ParseFloat(fields[4], 64)
			if err != nil {
				if opts.Strict {
					return nil, fmt.Errorf("games file line %d: bad price %q", lineNo, fields[4])
				}
				price = 0.0
			}
		}

		copies = append(copies, models.GameCopy{
			CopyID:        copyID,
			Platform:      Normalize(fields[1]),
			Genre:         Normalize(fields[2]),
			Title:         Normalize(fields[3]),
			PurchasePrice: price,
			PurchaseDate:  FormatDate(fields[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read games file: %w", err)
	}
	return copies, nil
}

// ParseRentalsFile reads the rental history file: a header line, then
// "copy id, rental date, return date, customer id" rows. An empty return
// date means the rental is still open.
func ParseRentalsFile(path string, opts Options) ([]models.RentalRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rentals file: %w", err)
	}
	defer file.Close()

	var records []models.RentalRecord
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		fields := splitFields(scanner.Text())
		if len(fields) != rentalsFieldCount {
			if opts.Strict {
				return nil, fmt.Errorf("rentals file line %d: expected %d fields, got %d", lineNo, rentalsFieldCount, len(fields))
			}
			continue
		}

		copyID, err := strconv.Atoi(fields[0])
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("rentals file line %d: bad copy id %q", lineNo, fields[0])
			}
			continue
		}

		var returnDate *string
		if fields[2] != "" {
			d := FormatDate(fields[2])
			returnDate = &d
		}

		records = append(records, models.RentalRecord{
			RentalUID:  uuid.New().String(),
			CopyID:     copyID,
			RentalDate: FormatDate(fields[1]),
			ReturnDate: returnDate,
			CustomerID: fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rentals file: %w", err)
	}
	return records, nil
}

// Reinitialize wipes both tables and reloads them from the given files.
// Destructive: existing rows are gone afterwards. The wipe and reload share
// one transaction, so a failed reload leaves the previous contents intact.
func Reinitialize(db *gorm.DB, gamesPath, rentalsPath string, opts Options) error {
	copies, err := ParseGamesFile(gamesPath, opts)
	if err != nil {
		return err
	}
	records, err := ParseRentalsFile(rentalsPath, opts)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.GameCopy{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.RentalRecord{}).Error; err != nil {
			return err
		}
		if len(copies) > 0 {
			if err := tx.CreateInBatches(copies, 200).Error; err != nil {
				return err
			}
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
