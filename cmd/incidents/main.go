// Command incidents prints orders whose payment failed after creation, newest first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"modelhubweb/config"
	"modelhubweb/dbhelper"
	"modelhubweb/services"

	log "github.com/sirupsen/logrus"
)

func main() {
	limit := flag.Int("limit", 50, "number of incidents to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.LedgerEnabled() {
		log.Fatal("DB_HOST is not set")
	}
	db, err := dbhelper.SetupDB(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	ledger := &dbhelper.IncidentLedger{DB: db}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	incidents, err := ledger.Recent(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to load incidents: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tORDER\tNUMBER\tUSER\tAMOUNT\tREASON")
	for _, i := range incidents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			i.CreatedAt.Format(time.RFC3339), i.OrderID, i.OrderNumber, i.UserID, services.FormatWon(i.Amount), i.Reason)
	}
	w.Flush()
}
