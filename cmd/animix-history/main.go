package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"jordanella.com/animix-go/internal/database"
)

// Prints the run history the fleet recorded
func main() {
	dbPath := flag.String("db", "data/animix.db", "Path to database file")
	numPasses := flag.Int("passes", 5, "Number of recent passes to show")
	numErrors := flag.Int("errors", 10, "Number of recent errors to show")
	account := flag.Int("account", 0, "Show run history for one account (1-based)")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database not found: %s", *dbPath)
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *account > 0 {
		printAccountHistory(w, db, *account-1)
		return
	}

	printStats(w, db)
	printPasses(w, db, *numPasses)
	printSummaries(w, db)
	printErrors(w, db, *numErrors)
}

func printStats(w *tabwriter.Writer, db *database.DB) {
	stats, err := db.GetStats()
	if err != nil {
		log.Printf("Failed to read stats: %v", err)
		return
	}
	version, _ := db.GetVersion()
	fmt.Fprintf(w, "=== Database (schema v%d) ===\n", version)
	fmt.Fprintf(w, "Passes:\t%d\nAccount runs:\t%d\nErrors:\t%d\n\n",
		stats["fleet_passes"], stats["account_runs"], stats["error_log"])
}

func printPasses(w *tabwriter.Writer, db *database.DB, limit int) {
	passes, err := db.GetRecentPasses(limit)
	if err != nil {
		log.Printf("Failed to read passes: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Recent passes ===")
	fmt.Fprintln(w, "#\tStarted\tStatus\tAccounts\tOK\tFailed\tDuration")
	for _, p := range passes {
		duration := "-"
		if p.DurationMs != nil {
			duration = (time.Duration(*p.DurationMs) * time.Millisecond).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n", p.PassNumber, p.StartedAt.Format(time.DateTime),
			p.Status, p.AccountCount, p.Succeeded, p.Failed, duration)
	}
	fmt.Fprintln(w)
}

func printSummaries(w *tabwriter.Writer, db *database.DB) {
	summaries, err := db.GetAccountSummaries()
	if err != nil {
		log.Printf("Failed to read account summaries: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Accounts ===")
	fmt.Fprintln(w, "Account\tRuns\tOK\tFailed\tDraws\tBred\tMissions\tLast run")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n", s.AccountIndex+1, s.TotalRuns, s.CompletedRuns,
			s.FailedRuns, s.GachaDraws, s.PetsBred, s.MissionsEntered, s.LastRunAt.Format(time.DateTime))
	}
	fmt.Fprintln(w)
}

func printErrors(w *tabwriter.Writer, db *database.DB, limit int) {
	errs, err := db.GetRecentErrors(limit)
	if err != nil {
		log.Printf("Failed to read errors: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Recent errors ===")
	for _, e := range errs {
		account := "-"
		if e.AccountIndex != nil {
			account = fmt.Sprintf("%d", *e.AccountIndex+1)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.OccurredAt.Format(time.DateTime), account,
			e.ErrorCategory, e.ErrorSeverity, e.ErrorMessage)
	}
}

func printAccountHistory(w *tabwriter.Writer, db *database.DB, index int) {
	runs, err := db.GetAccountHistory(index, 50)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}
	fmt.Fprintf(w, "=== Account %d ===\n", index+1)
	fmt.Fprintln(w, "Started\tStatus\tIP\tDraws\tBred\tClaimed\tEntered\tQuests\tError")
	for _, r := range runs {
		ip, msg := "-", ""
		if r.EgressIP != nil {
			ip = *r.EgressIP
		}
		if r.ErrorMessage != nil {
			msg = *r.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n", r.StartedAt.Format(time.DateTime), r.Status, ip,
			r.GachaDraws, r.PetsBred, r.MissionsClaimed, r.MissionsEntered, r.QuestsClaimed, msg)
	}
}
