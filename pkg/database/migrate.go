package database

import (
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies the schema file at schemaPath. The statements use
// CREATE TABLE IF NOT EXISTS, so running it on every start is safe.
func Migrate(db *sql.DB, schemaPath string) error {
	b, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", schemaPath, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
