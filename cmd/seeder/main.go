package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/dualstore"
	"github.com/poiesic/dualstore/extract"
)

// Sample documents exercising the main ingestion paths: structured tables,
// narrative paragraphs that reference table rows, a second source extending
// an existing table, and a register-style table with long free-text cells.
var documents = []*extract.Document{
	{
		FileID: "customers_q3.xlsx",
		Segments: []extract.Segment{
			{
				Name: "Accounts",
				Items: []extract.Item{
					{
						Kind:      extract.ItemTable,
						TableName: "Customers",
						Header:    []string{"ID", "Name", "Region", "Tier"},
						Rows: [][]string{
							{"101", "Acme Corporation", "West", "Gold"},
							{"102", "Globex Industries", "East", "Silver"},
							{"103", "Initech Holdings", "West", "Bronze"},
						},
					},
				},
			},
		},
	},
	{
		FileID: "orders_q3.xlsx",
		Segments: []extract.Segment{
			{
				Name: "Orders",
				Items: []extract.Item{
					{
						Kind:      extract.ItemTable,
						TableName: "Orders",
						Header:    []string{"Order ID", "Customer ID", "Amount", "Status"},
						Rows: [][]string{
							{"9001", "101", "12500.00", "shipped"},
							{"9002", "102", "890.50", "pending"},
							{"9003", "101", "4200.00", "shipped"},
						},
					},
				},
			},
		},
	},
	{
		FileID: "quarterly_review.docx",
		Segments: []extract.Segment{
			{
				Name: "Body",
				Items: []extract.Item{
					{Kind: extract.ItemHeading, Heading: "Account Highlights"},
					{
						Kind: extract.ItemParagraph,
						Text: "Customer 101 renewed their annual contract three weeks early, citing strong support response times over the quarter. The account team expects a tier upgrade discussion before the next renewal window opens.",
					},
					{
						Kind: extract.ItemParagraph,
						Text: "Globex Industries raised a billing dispute on order 9002 which remains pending while finance reconciles the purchase order against the signed quote. Resolution is expected within ten business days.",
					},
					{Kind: extract.ItemHeading, Heading: "Regional Notes"},
					{
						Kind: extract.ItemParagraph,
						Text: "The West region continues to outperform projections, driven primarily by repeat purchasing from established gold-tier accounts rather than new customer acquisition.",
					},
				},
			},
		},
	},
	{
		FileID: "customers_q4.xlsx",
		Segments: []extract.Segment{
			{
				Name: "Accounts",
				Items: []extract.Item{
					{
						Kind:      extract.ItemTable,
						TableName: "Customers",
						Header:    []string{"ID", "Name", "Region", "Tier"},
						Rows: [][]string{
							{"104", "Umbrella Logistics", "North", "Silver"},
							{"105", "Stark Fabrication", "East", "Gold"},
						},
					},
				},
			},
		},
	},
	{
		FileID: "support_tickets.xlsx",
		Segments: []extract.Segment{
			{
				Name: "Tickets",
				Items: []extract.Item{
					{
						Kind:      extract.ItemTable,
						TableName: "Support Tickets",
						Header:    []string{"Ticket ID", "Customer ID", "Status", "Description"},
						Rows: [][]string{
							{
								"T-501", "101", "closed",
								"Customer reported intermittent timeouts when exporting large reports during peak hours. Engineering traced the issue to a connection pool exhausted by long-running export jobs and deployed a fix that staggers export scheduling. The customer confirmed normal operation after two days of monitoring and the ticket was closed with a follow-up reminder set for thirty days. A post-incident review recommended raising the default pool ceiling for gold-tier deployments and adding an early-warning alert on pool saturation so similar incidents surface before customers notice degraded performance.",
							},
							{
								"T-502", "102", "open",
								"Invoice line items on the September statement do not match the agreed discount schedule from the renewal contract. Finance is auditing the affected invoices and preparing corrected statements. The customer has asked for written confirmation of the discount terms before settling the outstanding balance, and the account manager has escalated the request to the contracts team with a target turnaround of one week. Until the audit completes, automated payment reminders for this account are suspended to avoid sending dunning notices for amounts under dispute.",
							},
						},
					},
				},
			},
		},
	},
}

var dbPath = flag.String("db", "./dualstore_db", "path to the database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := dualstore.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	report, err := pipeline.IngestFiles(context.Background(), documents...)
	if err != nil {
		panic(err)
	}

	slog.Info("seeding complete",
		"files", report.FilesProcessed,
		"tables", report.TablesWritten,
		"chunks", report.ChunksWritten,
		"resolved", report.Resolved,
		"pending", report.PendingAdded,
	)
}
