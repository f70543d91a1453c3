package builder

import (
	"strings"

	"github.com/tordrt/ddlschema/internal/schema"
)

const idSuffix = "_id"

// InferRelationships adds an INFERRED_FK relationship for every column named
// <base>_id that is not an explicit foreign key, pointing at the first
// primary key column of the first table named <base>, <base>s or <base>es
// (case-insensitive) that has one. Tables are scanned in model order.
func InferRelationships(s *schema.Schema) {
	for _, table := range s.Tables {
		for _, col := range s.Columns[table.Name] {
			base, ok := strings.CutSuffix(col.Name, idSuffix)
			if !ok || col.IsForeignKey {
				continue
			}

			for _, target := range s.Tables {
				if !matchesBaseName(target.Name, base) {
					continue
				}
				pk := s.PrimaryKey(target.Name)
				if len(pk) == 0 {
					continue
				}
				s.Relationships = append(s.Relationships, schema.Relationship{
					FromTable:        table.Name,
					FromColumn:       col.Name,
					ToTable:          target.Name,
					ToColumn:         pk[0],
					RelationshipType: schema.RelationshipInferred,
				})
				break
			}
		}
	}
}

func matchesBaseName(tableName, base string) bool {
	return strings.EqualFold(tableName, base) ||
		strings.EqualFold(tableName, base+"s") ||
		strings.EqualFold(tableName, base+"es")
}
