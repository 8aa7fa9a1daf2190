// Command moneywise is the client for the moneywise persistence API. It
// owns the application's state store, issues commands against it, and
// renders derived views from the resulting snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneywise/internal/api"
	"moneywise/internal/config"
	"moneywise/internal/core"
	"moneywise/internal/insights"
	applog "moneywise/internal/log"
	"moneywise/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "cli"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	client, err := api.NewClient(cfg.ServerURL)
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "url", cfg.ServerURL)
		os.Exit(1)
	}
	st := store.New(client)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	app := &cli{store: st, cfg: cfg}

	var runErr error
	switch os.Args[1] {
	case "summary":
		runErr = app.summary(ctx)
	case "list":
		runErr = app.list(ctx, os.Args[2:])
	case "add":
		runErr = app.add(ctx, os.Args[2:])
	case "edit":
		runErr = app.edit(ctx, os.Args[2:])
	case "delete":
		runErr = app.delete(ctx, os.Args[2:])
	case "categories":
		runErr = app.categories(ctx)
	case "add-category":
		runErr = app.addCategory(ctx, os.Args[2:])
	case "budget":
		runErr = app.budget(ctx, os.Args[2:])
	case "export":
		runErr = app.export(ctx, os.Args[2:])
	case "watch":
		runErr = app.watch(ctx)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: moneywise <command> [flags]

commands:
  summary        totals, breakdown, heatmap and forecast
  list           transactions newest first (-type income|expense)
  add            record a transaction
  edit           update a transaction by id
  delete         remove a transaction by id
  categories     list known categories
  add-category   create a category
  budget         show the summary against a different budget (-amount, -account)
  export         dump transactions as JSON (-o file)
  watch          re-render the summary on every state change`)
}

type cli struct {
	store *store.Store
	cfg   *config.Config
}

// refresh loads transactions and categories before a command runs.
func (c *cli) refresh(ctx context.Context) error {
	if err := c.store.FetchTransactions(ctx); err != nil {
		return err
	}
	return c.store.FetchCategories(ctx)
}

func (c *cli) summary(ctx context.Context) error {
	if err := c.refresh(ctx); err != nil {
		return err
	}
	renderSummary(c.store.Snapshot(), time.Now())
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	typeFilter := fs.String("type", "", "filter by type (income|expense)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.store.FetchTransactions(ctx); err != nil {
		return err
	}

	snap := c.store.Snapshot()
	for _, t := range insights.SortedByDateDesc(snap.Transactions) {
		if *typeFilter != "" && string(t.Type) != *typeFilter {
			continue
		}
		mark := "-"
		if t.Type == core.Income {
			mark = "+"
		}
		fmt.Printf("%s  %s%s  %-24s  %-14s  %s  %s\n",
			t.Date.Format("2006-01-02"), mark, t.Amount, t.Description,
			t.CategoryLabel(), t.Account, t.ID)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.String("amount", "", "amount, e.g. 12.34 (required)")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "category name (suggested from the note when omitted)")
	account := fs.String("account", "Cash", "account label")
	note := fs.String("note", "", "free-text note")
	date := fs.String("date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	typ := fs.String("type", "expense", "income or expense")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", *amount, err)
	}
	day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
	if err != nil {
		return fmt.Errorf("date %q: %w", *date, err)
	}

	if err := c.store.FetchCategories(ctx); err != nil {
		return err
	}
	snap := c.store.Snapshot()

	// An explicit -category is a manual pick and latches off auto-suggestion;
	// otherwise the note (or the description) drives the suggestion.
	var selector insights.Selector
	if *category != "" {
		selector.Select(*category)
	} else {
		selector.ObserveNote(*note, snap.CategoryNames())
		if selector.Category() == "" {
			selector.ObserveNote(*desc, snap.CategoryNames())
		}
	}

	description := *desc
	if description == "" {
		if *typ == string(core.Income) {
			description = "Income"
		} else {
			description = "Expense"
		}
	}

	draft := core.TransactionDraft{
		Amount:      core.Money{Cents: cents},
		Description: description,
		CategoryID:  categoryID(snap.Categories, selector.Category()),
		Account:     *account,
		Note:        *note,
		Date:        day,
		Type:        core.TransactionType(*typ),
	}

	created, err := c.store.AddTransaction(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s %s (%s) id=%s\n", created.Type, created.Amount, created.CategoryLabel(), created.ID)
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "transaction id (required)")
	amount := fs.String("amount", "", "new amount")
	desc := fs.String("desc", "", "new description")
	category := fs.String("category", "", "new category name")
	account := fs.String("account", "", "new account label")
	note := fs.String("note", "", "new note")
	date := fs.String("date", "", "new date (YYYY-MM-DD)")
	typ := fs.String("type", "", "new type (income|expense)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}

	var patch core.TransactionPatch
	if *amount != "" {
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", *amount, err)
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if *desc != "" {
		patch.Description = desc
	}
	if *category != "" {
		cid := categoryID(c.store.Snapshot().Categories, *category)
		if cid == "" {
			return fmt.Errorf("unknown category %q", *category)
		}
		patch.CategoryID = &cid
	}
	if *account != "" {
		patch.Account = account
	}
	if *note != "" {
		patch.Note = note
	}
	if *date != "" {
		day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			return fmt.Errorf("date %q: %w", *date, err)
		}
		patch.Date = &day
	}
	if *typ != "" {
		t := core.TransactionType(*typ)
		patch.Type = &t
	}

	updated, err := c.store.EditTransaction(ctx, *id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s: %s %s (%s)\n", updated.ID, updated.Type, updated.Amount, updated.CategoryLabel())
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "transaction id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	if err := c.store.FetchTransactions(ctx); err != nil {
		return err
	}
	if err := c.store.DeleteTransaction(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", *id)
	return nil
}

func (c *cli) categories(ctx context.Context) error {
	if err := c.store.FetchCategories(ctx); err != nil {
		return err
	}
	for _, cat := range c.store.Snapshot().Categories {
		fmt.Printf("%-20s %-8s %s\n", cat.Name, cat.Type, cat.ID)
	}
	return nil
}

func (c *cli) addCategory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-category", flag.ExitOnError)
	name := fs.String("name", "", "category name (required)")
	typ := fs.String("type", "expense", "income or expense")
	color := fs.String("color", "", "display color")
	icon := fs.String("icon", "", "display icon")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := c.store.AddCategory(ctx, core.CategoryDraft{
		Name:  *name,
		Type:  *typ,
		Color: *color,
		Icon:  *icon,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created category %s id=%s\n", created.Name, created.ID)
	return nil
}

// budget renders the summary against an adjusted budget, optionally
// registering an extra account label for the session.
func (c *cli) budget(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	amount := fs.String("amount", "", "monthly budget, e.g. 1500.00")
	account := fs.String("account", "", "register an extra account label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *amount != "" {
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", *amount, err)
		}
		c.store.SetBudget(core.Money{Cents: cents})
	}
	if *account != "" {
		c.store.AddAccount(*account)
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}
	snap := c.store.Snapshot()
	renderSummary(snap, time.Now())
	fmt.Printf("\nAccounts: %s\n", strings.Join(snap.Accounts, ", "))
	return nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.store.FetchTransactions(ctx); err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return c.store.ExportJSON(w)
}

// watch keeps the store fresh via the periodic refresher and re-renders the
// summary on every committed change until interrupted.
func (c *cli) watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	unsubscribe := c.store.Subscribe(func(snap store.Snapshot) {
		if snap.Loading {
			return
		}
		fmt.Print("\033[H\033[2J") // clear screen
		renderSummary(snap, time.Now())
		if snap.Err != "" {
			fmt.Println("\n!", snap.Err)
		}
	})
	defer unsubscribe()

	refresher := store.NewRefresher(c.store, store.RefresherConfig{
		Interval: c.cfg.RefreshInterval,
	})
	if err := refresher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	return refresher.Stop(stopCtx)
}

func renderSummary(snap store.Snapshot, now time.Time) {
	fmt.Printf("Total spent   %s\n", insights.TotalSpent(snap.Transactions))
	fmt.Printf("Total income  %s\n", insights.TotalIncome(snap.Transactions))
	fmt.Printf("Spent today   %s\n", insights.SpentToday(snap.Transactions, now))
	fmt.Printf("Budget        %s\n", snap.Budget)

	if breakdown := insights.CategoryBreakdown(snap.Transactions); len(breakdown) > 0 {
		fmt.Println("\nBy category:")
		for _, slice := range breakdown {
			fmt.Printf("  %-16s %s\n", slice.Name, slice.Amount)
		}
	}

	fmt.Println("\nThis month:")
	fmt.Println(" ", renderHeatmap(insights.DailyHeatmap(snap.Transactions, now)))

	if forecast, ok := insights.Project(snap.Transactions, snap.Budget, now); ok {
		if forecast.OverBudget {
			fmt.Printf("\nAt this rate, you'll exceed your budget by ~$%.0f by month's end.\n",
				forecast.Difference.Dollars())
		} else {
			fmt.Printf("\nYou're on track! Predicted savings: ~$%.0f.\n",
				forecast.Difference.Dollars())
		}
	}
}

// renderHeatmap draws one glyph per day, darker for heavier spend.
func renderHeatmap(cells []insights.DayCell) string {
	glyphs := map[insights.Tier]string{
		insights.TierNone:   "·",
		insights.TierLow:    "░",
		insights.TierMedium: "▒",
		insights.TierHigh:   "█",
	}
	var b strings.Builder
	for _, cell := range cells {
		b.WriteString(glyphs[cell.Tier])
	}
	return b.String()
}

// categoryID resolves a category name to its identifier, "" when unknown.
func categoryID(cats []core.Category, name string) string {
	if name == "" {
		return ""
	}
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	return ""
}
