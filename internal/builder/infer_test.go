package builder

import (
	"reflect"
	"testing"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

func TestInferRelationships(t *testing.T) {
	tests := []struct {
		name  string
		stmts []ast.Statement
		want  []schema.Relationship
	}{
		{
			name: "exact table name",
			stmts: []ast.Statement{
				createTableStmt("user", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("orders_comment", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{
				{FromTable: "orders_comment", FromColumn: "user_id", ToTable: "user", ToColumn: "id", RelationshipType: schema.RelationshipInferred},
			},
		},
		{
			name: "plural with s",
			stmts: []ast.Statement{
				createTableStmt("users", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{
				{FromTable: "posts", FromColumn: "user_id", ToTable: "users", ToColumn: "id", RelationshipType: schema.RelationshipInferred},
			},
		},
		{
			name: "plural with es and mixed case",
			stmts: []ast.Statement{
				createTableStmt("Boxes", []ast.ColumnDef{column("box_key", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("items", []ast.ColumnDef{column("box_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{
				{FromTable: "items", FromColumn: "box_id", ToTable: "Boxes", ToColumn: "box_key", RelationshipType: schema.RelationshipInferred},
			},
		},
		{
			name: "no matching table",
			stmts: []ast.Statement{
				createTableStmt("accounts", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{},
		},
		{
			name: "matching table without primary key",
			stmts: []ast.Statement{
				createTableStmt("users", []ast.ColumnDef{column("id", ast.TypeInt)}),
				createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{},
		},
		{
			name: "first matching table with a primary key wins",
			stmts: []ast.Statement{
				createTableStmt("user", []ast.ColumnDef{column("id", ast.TypeInt)}),
				createTableStmt("users", []ast.ColumnDef{column("uid", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("USERS_ES", nil),
				createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{
				{FromTable: "posts", FromColumn: "user_id", ToTable: "users", ToColumn: "uid", RelationshipType: schema.RelationshipInferred},
			},
		},
		{
			name: "first primary key column of composite key",
			stmts: []ast.Statement{
				createTableStmt("users", []ast.ColumnDef{column("tenant", ast.TypeInt), column("id", ast.TypeInt)}, primaryKey("", "tenant", "id")),
				createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
			},
			want: []schema.Relationship{
				{FromTable: "posts", FromColumn: "user_id", ToTable: "users", ToColumn: "tenant", RelationshipType: schema.RelationshipInferred},
			},
		},
		{
			name: "suffix is case sensitive",
			stmts: []ast.Statement{
				createTableStmt("users", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
				createTableStmt("posts", []ast.ColumnDef{column("user_ID", ast.TypeInt)}),
			},
			want: []schema.Relationship{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(tt.stmts...)
			InferRelationships(s)
			if !reflect.DeepEqual(s.Relationships, tt.want) {
				t.Errorf("Relationships = %+v, want %+v", s.Relationships, tt.want)
			}
		})
	}
}

func TestInferRelationshipsSkipsExplicitForeignKeys(t *testing.T) {
	s := apply(parentChild("fk_a")...)
	InferRelationships(s)

	if got := relationshipsOfType(s, schema.RelationshipInferred); len(got) != 0 {
		t.Errorf("inferred relationships = %+v, want none", got)
	}
}

func TestInferRelationshipsLeavesColumnFlags(t *testing.T) {
	s := apply(
		createTableStmt("users", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
		createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)}),
	)
	InferRelationships(s)

	col := mustColumn(t, s, "posts", "user_id")
	if col.IsForeignKey || col.References != nil {
		t.Errorf("posts.user_id = %+v, want no foreign key flags from inference", col)
	}
}
