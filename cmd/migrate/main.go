package main

import (
	"bufio"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"felix/internal/config"
	"felix/internal/db"
)

const downMarker = "-- +migrate Down"

func main() {
	dir := flag.String("dir", "migrations", "directory holding .sql migration files")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.Fatalf("failed to read migrations: %v", err)
	}
	sort.Strings(files)

	switch command {
	case "up":
		if err := migrateUp(database, files); err != nil {
			log.Fatal(err)
		}
	case "down":
		if err := migrateDown(database, files); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command %q (want up or down)", command)
	}
}

func migrateUp(database applier, files []string) error {
	for _, file := range files {
		filename := filepath.Base(file)
		applied, err := isApplied(database, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration state: %w", err)
		}
		if applied {
			continue
		}
		if err := runSection(database, file, false); err != nil {
			return fmt.Errorf("failed to apply %s: %w", filename, err)
		}
		if _, err := database.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		fmt.Printf("applied %s\n", filename)
	}
	return nil
}

// migrateDown reverts only the most recently applied migration.
func migrateDown(database applier, files []string) error {
	for i := len(files) - 1; i >= 0; i-- {
		filename := filepath.Base(files[i])
		applied, err := isApplied(database, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration state: %w", err)
		}
		if !applied {
			continue
		}
		if err := runSection(database, files[i], true); err != nil {
			return fmt.Errorf("failed to revert %s: %w", filename, err)
		}
		if _, err := database.Exec(`DELETE FROM schema_migrations WHERE filename = $1`, filename); err != nil {
			return fmt.Errorf("failed to unrecord migration %s: %w", filename, err)
		}
		fmt.Printf("reverted %s\n", filename)
		return nil
	}
	return fmt.Errorf("no applied migrations to revert")
}

func isApplied(database applier, filename string) (bool, error) {
	var exists bool
	err := database.Get(&exists, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, filename)
	return exists, err
}

func runSection(database applier, path string, down bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	up, downSQL, _ := strings.Cut(string(content), downMarker)
	section := up
	if down {
		section = downSQL
	}
	for _, stmt := range splitSQL(section) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := database.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.Contains(line, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}

type applier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
}
