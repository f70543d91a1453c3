package db

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	types: map[columnKind]string{
		kindID:   "TEXT",
		kindText: "TEXT",
		kindInt:  "INTEGER",
		kindBool: "BOOLEAN",
		kindTime: "DATETIME",
	},
	placeholder: func(int) string { return "?" },
}

// SQLiteCatalog stores models in a SQLite file
type SQLiteCatalog struct {
	*sqlCatalog
}

// NewSQLiteCatalog opens (creating if needed) the SQLite database at path
func NewSQLiteCatalog(ctx context.Context, path string) (*SQLiteCatalog, error) {
	c, err := openSQLCatalog(ctx, "sqlite3", path, sqliteDialect)
	if err != nil {
		return nil, err
	}
	return &SQLiteCatalog{sqlCatalog: c}, nil
}
