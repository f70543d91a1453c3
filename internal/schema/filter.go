package schema

import "github.com/sahilm/fuzzy"

// MissingTable is a requested table that does not exist in the schema
type MissingTable struct {
	Name string
	// Suggestion is the closest existing table name, if any
	Suggestion string
}

// Filter returns a copy of the schema restricted to the include list (all
// tables when empty) minus the exclude list. Relationships follow their
// source table; indexes and constraints follow their owning table.
// Names in include that match no table are returned as missing.
func (s *Schema) Filter(include, exclude []string) (*Schema, []MissingTable) {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}

	var missing []MissingTable
	keep := make(map[string]bool, len(names))
	if len(include) == 0 {
		for _, name := range names {
			keep[name] = true
		}
	} else {
		for _, name := range include {
			if !s.HasTable(name) {
				missing = append(missing, MissingTable{Name: name, Suggestion: suggest(name, names)})
				continue
			}
			keep[name] = true
		}
	}
	for _, name := range exclude {
		delete(keep, name)
	}

	out := New()
	out.Tables = filter(s.Tables, func(t Table) bool { return keep[t.Name] })
	for name, cols := range s.Columns {
		if keep[name] {
			out.Columns[name] = append([]Column(nil), cols...)
		}
	}
	out.Relationships = filter(s.Relationships, func(r Relationship) bool { return keep[r.FromTable] })
	out.Indexes = filter(s.Indexes, func(i Index) bool { return keep[i.Table] })
	out.Constraints = filter(s.Constraints, func(c Constraint) bool { return keep[c.Table] })
	return out, missing
}

func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
