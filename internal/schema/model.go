package schema

// New returns an empty schema whose lists serialize as empty arrays
func New() *Schema {
	return &Schema{
		Tables:        []Table{},
		Columns:       map[string][]Column{},
		Relationships: []Relationship{},
		Indexes:       []Index{},
		Constraints:   []Constraint{},
	}
}

// Table returns the first table with the given name, or nil
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// HasTable reports whether a table with the given name exists
func (s *Schema) HasTable(name string) bool {
	return s.Table(name) != nil
}

// PutTable replaces the table of the same name in place, or appends it.
// It reports whether a previous table was replaced.
func (s *Schema) PutTable(t Table) bool {
	if existing := s.Table(t.Name); existing != nil {
		*existing = t
		return true
	}
	s.Tables = append(s.Tables, t)
	return false
}

// RemoveTable removes every table with the given name and its column list
func (s *Schema) RemoveTable(name string) {
	s.Tables = filter(s.Tables, func(t Table) bool { return t.Name != name })
	delete(s.Columns, name)
}

// Column returns a pointer into the column list of table, or nil
func (s *Schema) Column(table, column string) *Column {
	cols := s.Columns[table]
	for i := range cols {
		if cols[i].Name == column {
			return &cols[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key column names of a table in column order
func (s *Schema) PrimaryKey(table string) []string {
	var pk []string
	for _, col := range s.Columns[table] {
		if col.IsPrimaryKey {
			pk = append(pk, col.Name)
		}
	}
	return pk
}

// OutgoingRelationships returns relationships whose source is table
func (s *Schema) OutgoingRelationships(table string) []Relationship {
	return filter(s.Relationships, func(r Relationship) bool { return r.FromTable == table })
}

// IncomingRelationships returns relationships that point at table
func (s *Schema) IncomingRelationships(table string) []Relationship {
	return filter(s.Relationships, func(r Relationship) bool { return r.ToTable == table })
}

// TableIndexes returns the indexes defined on table
func (s *Schema) TableIndexes(table string) []Index {
	return filter(s.Indexes, func(i Index) bool { return i.Table == table })
}

// TableConstraints returns the constraints defined on table
func (s *Schema) TableConstraints(table string) []Constraint {
	return filter(s.Constraints, func(c Constraint) bool { return c.Table == table })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
