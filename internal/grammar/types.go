package grammar

import (
	"strconv"
	"strings"
	"unicode"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/tordrt/ddlschema/internal/ast"
)

// typeKinds maps catalog and keyword spellings onto the modeled type set
var typeKinds = map[string]ast.TypeKind{
	"int4":        ast.TypeInt,
	"int":         ast.TypeInt,
	"integer":     ast.TypeInt,
	"int8":        ast.TypeBigInt,
	"bigint":      ast.TypeBigInt,
	"int2":        ast.TypeSmallInt,
	"smallint":    ast.TypeSmallInt,
	"float4":      ast.TypeFloat,
	"real":        ast.TypeFloat,
	"float":       ast.TypeFloat,
	"float8":      ast.TypeDouble,
	"double":      ast.TypeDouble,
	"numeric":     ast.TypeDecimal,
	"decimal":     ast.TypeDecimal,
	"bool":        ast.TypeBoolean,
	"boolean":     ast.TypeBoolean,
	"bpchar":      ast.TypeChar,
	"char":        ast.TypeChar,
	"character":   ast.TypeChar,
	"varchar":     ast.TypeVarchar,
	"text":        ast.TypeText,
	"date":        ast.TypeDate,
	"time":        ast.TypeTime,
	"timetz":      ast.TypeTime,
	"timestamp":   ast.TypeTimestamp,
	"timestamptz": ast.TypeTimestamp,
	"datetime":    ast.TypeDatetime,
	"json":        ast.TypeJSON,
	"uuid":        ast.TypeUUID,
}

// convertTypeName maps a grammar type name and its integer modifiers. src
// is the statement text the type name's location points into.
func convertTypeName(tn *pg_query.TypeName, src string) ast.DataType {
	if tn == nil {
		return ast.DataType{Kind: ast.TypeOther}
	}

	parts := stringList(tn.GetNames())
	if len(parts) > 1 && parts[0] == "pg_catalog" {
		parts = parts[1:]
	}
	name := strings.ToLower(strings.Join(parts, "."))

	dt := ast.DataType{Kind: ast.TypeOther, Name: name}
	// Arrays of any element type are outside the modeled set
	if len(tn.GetArrayBounds()) > 0 {
		return dt
	}

	kind, ok := typeKinds[name]
	if !ok {
		return dt
	}
	dt.Kind = kind
	dt.TimeZone = name == "timetz" || name == "timestamptz"

	mods := typeModifiers(tn.GetTypmods())
	switch kind {
	case ast.TypeChar, ast.TypeVarchar, ast.TypeInt, ast.TypeBigInt, ast.TypeSmallInt:
		dt.Length = modifier(mods, 0)
	case ast.TypeFloat, ast.TypeTime, ast.TypeTimestamp, ast.TypeDatetime:
		dt.Precision = modifier(mods, 0)
	case ast.TypeDecimal:
		dt.Precision = modifier(mods, 0)
		dt.Scale = modifier(mods, 1)
	default:
	}

	if loc := int(tn.GetLocation()); loc >= 0 && loc < len(src) {
		return respell(dt, src[loc:])
	}
	return dt
}

// respell restores FLOAT and CHAR as written at the start of text. Both
// grammars rewrite them: a bare FLOAT becomes a double, FLOAT(p) loses p
// and a bare CHAR gains a length of one.
func respell(dt ast.DataType, text string) ast.DataType {
	word, mods, ok := writtenType(text)
	if !ok {
		return dt
	}
	switch word {
	case "float":
		return ast.DataType{Kind: ast.TypeFloat, Precision: modifier(mods, 0), Name: word}
	case "char", "character":
		return ast.DataType{Kind: ast.TypeChar, Length: modifier(mods, 0), Name: word}
	default:
		return dt
	}
}

// writtenType reads the type keyword at the start of text, lower-cased, and
// its parenthesized integer arguments. ok is false when text does not start
// with a keyword or the keyword begins a multi-word type name.
func writtenType(text string) (word string, mods []int, ok bool) {
	end := strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if end < 0 {
		end = len(text)
	}
	if end == 0 {
		return "", nil, false
	}
	word = strings.ToLower(text[:end])

	rest := strings.TrimLeftFunc(text[end:], unicode.IsSpace)
	if next := strings.ToLower(rest); strings.HasPrefix(next, "varying") || strings.HasPrefix(next, "precision") {
		return "", nil, false
	}
	if !strings.HasPrefix(rest, "(") {
		return word, nil, true
	}

	args, _, closed := strings.Cut(rest[1:], ")")
	if !closed {
		return word, nil, true
	}
	for _, arg := range strings.Split(args, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return word, nil, true
		}
		mods = append(mods, n)
	}
	return word, mods, true
}

func typeModifiers(typmods []*pg_query.Node) []int {
	var mods []int
	for _, mod := range typmods {
		if aConst := mod.GetAConst(); aConst != nil {
			if intVal := aConst.GetIval(); intVal != nil {
				mods = append(mods, int(intVal.GetIval()))
			}
		}
	}
	return mods
}

func modifier(mods []int, i int) *int {
	if i >= len(mods) {
		return nil
	}
	v := mods[i]
	return &v
}
