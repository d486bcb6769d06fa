package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/voice/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var db config.Database
	var dir string
	var all bool
	config.DatabaseFlags(flag.CommandLine, &db)
	flag.StringVar(&dir, "dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "Migrations directory")
	flag.BoolVar(&all, "all", false, "Apply every *.up.sql file in order")
	flag.Parse()

	if !all && flag.NArg() < 1 {
		log.Fatal("a migration name is required (or -all).")
	}

	conn, err := sql.Open("postgres", db.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	var files []string
	if all {
		files, err = upMigrations(dir)
	} else {
		var name string
		name, err = migrationFilePath(dir, flag.Arg(0))
		files = []string{name}
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatal(err)
		}
		if _, err := conn.Exec(string(content)); err != nil {
			log.Fatalf("Failed to execute SQL file %s: %v", name, err)
		}
		fmt.Printf("Migration file %s executed successfully.\n", name)
	}
}

func upMigrations(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}
