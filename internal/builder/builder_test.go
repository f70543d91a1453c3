package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/tordrt/ddlschema/internal/ast"
)

// fakeParser maps statement text to canned statements; unknown text fails
type fakeParser struct {
	statements map[string][]ast.Statement
	seen       []string
}

func (p *fakeParser) Parse(sql string) ([]ast.Statement, error) {
	p.seen = append(p.seen, sql)
	stmts, ok := p.statements[sql]
	if !ok {
		return nil, fmt.Errorf("syntax error in %q", sql)
	}
	return stmts, nil
}

func newFakeParser() *fakeParser {
	stmts := parentChild("fk_a")
	return &fakeParser{statements: map[string][]ast.Statement{
		"CREATE a":     {stmts[0]},
		"CREATE b":     {stmts[1]},
		"CREATE users": {createTableStmt("users", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())})},
		"CREATE posts": {createTableStmt("posts", []ast.ColumnDef{column("user_id", ast.TypeInt)})},
		"DROP a":       {{Kind: ast.StatementDrop, Drop: &ast.Drop{ObjectType: ast.ObjectTable, Names: []string{"a"}}}},
	}}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		opts       []Option
		wantTables []string
		wantRels   int
	}{
		{
			name:       "statements applied in order",
			sql:        "CREATE a; CREATE b;",
			wantTables: []string{"a", "b"},
			wantRels:   1,
		},
		{
			name:       "unparseable segments are skipped",
			sql:        "CREATE a; this is not sql; CREATE b",
			wantTables: []string{"a", "b"},
			wantRels:   1,
		},
		{
			name:       "later drop removes earlier table",
			sql:        "CREATE a; CREATE b; DROP a",
			wantTables: []string{"b"},
			wantRels:   0,
		},
		{
			name:       "inference runs after all statements",
			sql:        "CREATE posts; CREATE users",
			wantTables: []string{"posts", "users"},
			wantRels:   1,
		},
		{
			name:       "inference disabled",
			sql:        "CREATE posts; CREATE users",
			opts:       []Option{WithoutInference()},
			wantTables: []string{"posts", "users"},
			wantRels:   0,
		},
		{
			name:       "empty input",
			sql:        "  ;; ",
			wantTables: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(newFakeParser(), tt.opts...)
			s, err := b.Build(context.Background(), tt.sql)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			names := []string{}
			for _, table := range s.Tables {
				names = append(names, table.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.wantTables, ",") {
				t.Errorf("Build() tables = %v, want %v", names, tt.wantTables)
			}
			if len(s.Relationships) != tt.wantRels {
				t.Errorf("Build() relationships = %+v, want %d", s.Relationships, tt.wantRels)
			}
		})
	}
}

func TestBuildPassesSplitSegments(t *testing.T) {
	p := newFakeParser()
	_, err := New(p).Build(context.Background(), "  CREATE a ;\n\nCREATE 'x;y' ; ")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"CREATE a", "CREATE 'x;y'"}
	if strings.Join(p.seen, "|") != strings.Join(want, "|") {
		t.Errorf("parser saw %q, want %q", p.seen, want)
	}
}

func TestBuildAllSplitsDocumentsSeparately(t *testing.T) {
	p := newFakeParser()
	s, err := New(p).BuildAll(context.Background(), []string{"CREATE a; garbage 'open", "CREATE b"})
	if err != nil {
		t.Fatalf("BuildAll() error = %v", err)
	}

	want := []string{"CREATE a", "garbage 'open", "CREATE b"}
	if strings.Join(p.seen, "|") != strings.Join(want, "|") {
		t.Errorf("parser saw %q, want %q", p.seen, want)
	}
	if len(s.Tables) != 2 || s.Tables[1].Name != "b" {
		t.Errorf("BuildAll() tables = %+v, want a and b", s.Tables)
	}
}

func TestBuildIsolatesRuns(t *testing.T) {
	b := New(newFakeParser())
	first, err := b.Build(context.Background(), "CREATE a")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := b.Build(context.Background(), "CREATE users")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(first.Tables) != 1 || len(second.Tables) != 1 || second.Tables[0].Name != "users" {
		t.Errorf("runs share state: first %+v, second %+v", first.Tables, second.Tables)
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newFakeParser()).Build(ctx, "CREATE a")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildWithoutParser(t *testing.T) {
	if _, err := New(nil).Build(context.Background(), "CREATE a"); err == nil {
		t.Error("Build() error = nil, want error for missing parser")
	}
}

func TestBuildLogsSkippedStatements(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := New(newFakeParser(), WithLogger(logger)).Build(context.Background(), "CREATE a; garbage")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !s.HasTable("a") {
		t.Error("table a missing")
	}

	out := buf.String()
	for _, want := range []string{"skipping statement", "segment=2", "schema built", "skipped=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildEmptyModel(t *testing.T) {
	s, err := New(newFakeParser()).Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.Tables == nil || s.Columns == nil || s.Relationships == nil || s.Indexes == nil || s.Constraints == nil {
		t.Errorf("Build() = %+v, want non-nil collections", s)
	}
}
