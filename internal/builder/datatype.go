package builder

import (
	"fmt"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

// Default display widths and precisions for types declared without modifiers
const (
	defaultIntWidth         = 11
	defaultBigIntWidth      = 20
	defaultSmallIntWidth    = 6
	defaultFloatPrecision   = 24
	defaultDecimalPrecision = 10
	defaultDecimalScale     = 0
)

// NormalizeType returns the canonical string form of a data type.
// Types outside the modeled set normalize to UNKNOWN.
func NormalizeType(dt ast.DataType) string {
	switch dt.Kind {
	case ast.TypeChar:
		return withLength("CHAR", dt.Length)
	case ast.TypeVarchar:
		return withLength("VARCHAR", dt.Length)
	case ast.TypeText:
		return "TEXT"
	case ast.TypeInt:
		return fmt.Sprintf("INT(%d)", valueOr(dt.Length, defaultIntWidth))
	case ast.TypeBigInt:
		return fmt.Sprintf("BIGINT(%d)", valueOr(dt.Length, defaultBigIntWidth))
	case ast.TypeSmallInt:
		return fmt.Sprintf("SMALLINT(%d)", valueOr(dt.Length, defaultSmallIntWidth))
	case ast.TypeFloat:
		return fmt.Sprintf("FLOAT(%d)", valueOr(dt.Precision, defaultFloatPrecision))
	case ast.TypeDouble:
		return "DOUBLE"
	case ast.TypeDecimal:
		precision, scale := defaultDecimalPrecision, defaultDecimalScale
		if dt.Precision != nil {
			precision = *dt.Precision
			scale = valueOr(dt.Scale, defaultDecimalScale)
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	case ast.TypeBoolean:
		return "BOOLEAN"
	case ast.TypeDate:
		return "DATE"
	case ast.TypeTime:
		return withLength("TIME", dt.Precision) + timeZoneSuffix(dt.TimeZone)
	case ast.TypeTimestamp:
		return withLength("TIMESTAMP", dt.Precision) + timeZoneSuffix(dt.TimeZone)
	case ast.TypeDatetime:
		return withLength("DATETIME", dt.Precision)
	case ast.TypeJSON:
		return "JSON"
	case ast.TypeUUID:
		return "UUID"
	default:
		return schema.UnknownDataType
	}
}

func withLength(name string, n *int) string {
	if n == nil {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, *n)
}

func valueOr(n *int, fallback int) int {
	if n == nil {
		return fallback
	}
	return *n
}

func timeZoneSuffix(tz bool) string {
	if tz {
		return " WITH TIME ZONE"
	}
	return ""
}
