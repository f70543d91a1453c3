package db

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	types: map[columnKind]string{
		kindID:   "VARCHAR(36)",
		kindText: "TEXT",
		kindInt:  "BIGINT",
		kindBool: "BOOLEAN",
		kindTime: "DATETIME(6)",
	},
	placeholder: func(int) string { return "?" },
}

// MySQLCatalog stores models in MySQL
type MySQLCatalog struct {
	*sqlCatalog
}

// NewMySQLCatalog connects to MySQL; connString is a go-sql-driver DSN
func NewMySQLCatalog(ctx context.Context, connString string) (*MySQLCatalog, error) {
	c, err := openSQLCatalog(ctx, "mysql", connString, mysqlDialect)
	if err != nil {
		return nil, err
	}
	return &MySQLCatalog{sqlCatalog: c}, nil
}
