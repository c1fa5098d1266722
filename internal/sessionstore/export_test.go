package sessionstore

import (
	"database/sql"
	"fmt"
)

// SetSchemaVersionForTest overwrites the stamped schema version.
func SetSchemaVersionForTest(path string, version int) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
