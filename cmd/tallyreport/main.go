package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/voice/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/voice/internal/config"
	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/services"
)

const barWidth = 30

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dbCfg config.Database
	config.DatabaseFlags(flag.CommandLine, &dbCfg)
	flag.Parse()

	db, err := sql.Open("postgres", dbCfg.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	tallyService := services.NewTallyService(postgres.NewTallyRepository(db))

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tally, err := tallyService.Fetch(ctx)
	if err != nil {
		log.Fatalf("Error fetching tally: %v", err)
	}

	if err := writeReport(os.Stdout, tally); err != nil {
		log.Fatal(err)
	}
}

func writeReport(out io.Writer, tally *domain.Tally) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCHOICE\tVOTES\t")
	for _, choice := range domain.Choices() {
		bar := strings.Repeat("█", int(tally.WidthPercent(choice.Index)*barWidth/100))
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", choice.Index+1, choice.Label, humanize.Comma(tally.Counts[choice.Index]), bar)
	}
	fmt.Fprintf(w, "\tTOTAL\t%s\t\n", humanize.Comma(tally.Total))
	return w.Flush()
}
