package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tordrt/ddlschema/internal/config"
)

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tablesStr  string
		wantTables []string
	}{
		{
			name:       "single table",
			tablesStr:  "users",
			wantTables: []string{"users"},
		},
		{
			name:       "multiple tables",
			tablesStr:  "users,posts,comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "tables with spaces",
			tablesStr:  "users, posts, comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty entries dropped",
			tablesStr:  "users,,posts,",
			wantTables: []string{"users", "posts"},
		},
		{
			name:       "empty string",
			tablesStr:  "",
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTables := parseTableList(tt.tablesStr)

			if len(gotTables) != len(tt.wantTables) {
				t.Errorf("parseTableList() returned %d tables, want %d", len(gotTables), len(tt.wantTables))
				return
			}

			for i, table := range gotTables {
				if table != tt.wantTables[i] {
					t.Errorf("parseTableList() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestResolveColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	tests := []struct {
		name string
		mode string
		want bool
	}{
		{"always", config.ColorAlways, true},
		{"never", config.ColorNever, false},
		{"auto on buffer", config.ColorAuto, false},
		{"empty on buffer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveColor(tt.mode, &bytes.Buffer{}); got != tt.want {
				t.Errorf("resolveColor(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}

	t.Run("auto on regular file", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "out"))
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = f.Close() }()
		if resolveColor(config.ColorAuto, f) {
			t.Error("resolveColor(auto, file) = true, want false")
		}
	})
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.sql")
	second := filepath.Join(dir, "b.sql")
	if err := os.WriteFile(first, []byte("CREATE TABLE a (id INT)"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("CREATE TABLE b (id INT);"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    []string
		wantErr bool
	}{
		{
			name: "one document per file",
			args: []string{first, second},
			want: []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT);"},
		},
		{
			name:  "no args reads stdin",
			stdin: "DROP TABLE a",
			want:  []string{"DROP TABLE a"},
		},
		{
			name:  "dash reads stdin",
			args:  []string{first, "-"},
			stdin: "DROP TABLE a",
			want:  []string{"CREATE TABLE a (id INT)", "DROP TABLE a"},
		},
		{
			name:    "missing file",
			args:    []string{filepath.Join(dir, "missing.sql")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readInputs(tt.args, strings.NewReader(tt.stdin))
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("readInputs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvFormat, "")
	t.Setenv(config.EnvCatalogURL, "")
	t.Setenv(config.EnvColor, "")

	dir := t.TempDir()
	input := filepath.Join(dir, "shop.sql")
	ddl := `CREATE TABLE users (id INT PRIMARY KEY, email TEXT NOT NULL);
CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id))`
	if err := os.WriteFile(input, []byte(ddl), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.txt")

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{input, "-f", "text", "-o", output, "--color", "never", "-t", "users,usr"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "TABLE users (PK: id)") {
		t.Errorf("output missing users header:\n%s", got)
	}
	if strings.Contains(got, "orders") {
		t.Errorf("output contains filtered table orders:\n%s", got)
	}
	if !strings.Contains(stderr.String(), `warning: table "usr" not found`) {
		t.Errorf("stderr = %q, want missing table warning", stderr.String())
	}
}
