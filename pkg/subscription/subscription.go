// Package subscription reads the external subscription directory: a plain
// text file mapping customer ids to a subscription tier and status. The
// directory is consumed read-only; nothing here writes it back.
package subscription

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Rental limits per tier. A tier not listed here allows nothing.
var tierLimits = map[string]int{
	"basic":    2,
	"standard": 5,
	"premium":  10,
}

// Entry is one row of the directory.
type Entry struct {
	CustomerID string
	Tier       string
	Status     string
}

// Directory is an in-memory snapshot of the subscription file.
type Directory struct {
	entries map[string]Entry
}

// NewDirectory builds a directory from already-parsed entries, keyed by
// customer id. Used by tests and by Load.
func NewDirectory(entries []Entry) *Directory {
	d := &Directory{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		d.entries[e.CustomerID] = e
	}
	return d
}

// Load reads the directory file. Format: a header line to discard, then
// comma-separated "customer id, tier, status" lines. Rows with a different
// field count are skipped, like the bulk import files.
func Load(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subscription file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			continue
		}
		entries = append(entries, Entry{
			CustomerID: strings.TrimSpace(fields[0]),
			Tier:       strings.ToLower(strings.TrimSpace(fields[1])),
			Status:     strings.ToLower(strings.TrimSpace(fields[2])),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subscription file: %w", err)
	}
	return NewDirectory(entries), nil
}

// IsActive reports whether the customer exists and holds an active
// subscription.
func (d *Directory) IsActive(customerID string) bool {
	e, ok := d.entries[customerID]
	return ok && e.Status == "active"
}

// RentalLimit returns the maximum number of concurrent open rentals for the
// customer's tier. Unknown customers and unknown tiers get 0.
func (d *Directory) RentalLimit(customerID string) int {
	e, ok := d.entries[customerID]
	if !ok {
		return 0
	}
	return tierLimits[e.Tier]
}
