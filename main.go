package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quacktask/quacktask/pkg/auth"
	"github.com/quacktask/quacktask/pkg/canvas"
	"github.com/quacktask/quacktask/pkg/config"
	"github.com/quacktask/quacktask/pkg/google"
	"github.com/quacktask/quacktask/pkg/scheduler"
	"github.com/quacktask/quacktask/pkg/store"
	qsync "github.com/quacktask/quacktask/pkg/sync"
)

func main() {
	// 1. Parse Flags
	doAuth := flag.Bool("auth", false, "Authenticate with Google Tasks")
	doLogout := flag.Bool("logout", false, "Remove the stored token and clear sync state")
	showLists := flag.Bool("lists", false, "Print the available task lists as JSON")
	setList := flag.String("set-list", "", "Select the task list new tasks go to")
	listID := flag.String("list", "", "Task list ID for -add/-delete (overrides the selection)")
	doStore := flag.Bool("store", false, "Read scraped items as JSON from stdin and reconcile")
	doSync := flag.Bool("sync", false, "Reconcile the cached items against Google Tasks")
	showItems := flag.Bool("items", false, "Print the visible items as JSON")
	addKey := flag.String("add", "", "Create a Google Task for the given item key")
	notes := flag.String("notes", "", "Extra notes for -add")
	due := flag.String("due", "", "Due date for -add (overrides the item's own due)")
	deleteKey := flag.String("delete", "", "Delete the Google Task for the given item key")
	hideKey := flag.String("hide", "", "Hide the given item key from the visible view")
	unhideKey := flag.String("unhide", "", "Unhide the given item key")
	showHidden := flag.Bool("hidden", false, "Print the hidden item keys as JSON")
	serve := flag.Bool("serve", false, "Run as a daemon, reconciling on a schedule")
	flag.Parse()

	ctx := context.Background()

	// 2. Handle Authentication (needs no store)
	if *doAuth {
		if auth.HasToken() {
			if err := auth.RemoveToken(); err != nil {
				log.Fatalf("could not remove existing token: %v. Please delete it manually", err)
			}
		}
		if err := auth.Authenticate(ctx); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	// 3. Load Config, Open Store
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
		}
		time.Local = loc
	}

	storePath, err := cfg.StoreLocation()
	if err != nil {
		log.Fatalf("Error resolving store path: %v", err)
	}
	cache, err := store.New(storePath)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer cache.Close()

	// Seed the list selection from config on first run.
	if cfg.DefaultList != "" {
		if sel, err := cache.SelectedList(); err == nil && sel == "" {
			cache.SetSelectedList(cfg.DefaultList)
		}
	}

	dial := func(ctx context.Context) (qsync.Remote, error) {
		return google.NewClient(ctx)
	}
	orch := qsync.NewOrchestrator(qsync.NewEngine(dial, cache), cache, dial)

	// 4. Dispatch
	switch {
	case *doLogout:
		if err := orch.Logout(); err != nil {
			log.Fatalf("Error clearing sync state: %v", err)
		}
		if err := auth.RemoveToken(); err != nil {
			log.Fatalf("Error removing token: %v", err)
		}
		fmt.Println("Logged out.")

	case *showLists:
		authed, lists, err := orch.Lists(ctx)
		if err != nil {
			log.Fatalf("Error fetching task lists: %v", err)
		}
		out := struct {
			Authed bool          `json:"authed"`
			Lists  []google.List `json:"lists"`
		}{Authed: authed, Lists: lists}
		printJSON(out)

	case *setList != "":
		summary, err := orch.SelectList(ctx, *setList)
		if err != nil {
			log.Fatalf("Error selecting list: %v", err)
		}
		printJSON(summary)

	case *doStore:
		items, err := canvas.ParseItems(os.Stdin)
		if err != nil {
			log.Fatalf("Error parsing items from stdin: %v", err)
		}
		summary, err := orch.StoreScraped(ctx, items)
		if err != nil {
			log.Fatalf("Error storing items: %v", err)
		}
		printJSON(summary)

	case *doSync:
		summary, err := orch.SyncNow(ctx)
		if err != nil {
			log.Fatalf("Error syncing: %v", err)
		}
		printJSON(summary)

	case *showItems:
		items, err := orch.VisibleItems()
		if err != nil {
			log.Fatalf("Error reading items: %v", err)
		}
		if items == nil {
			items = []canvas.Item{}
		}
		printJSON(items)

	case *addKey != "":
		entry, err := orch.Add(ctx, qsync.AddParams{
			Key:         *addKey,
			ListID:      *listID,
			Notes:       *notes,
			DueOverride: *due,
		})
		if err != nil {
			log.Fatalf("Error adding task: %v", err)
		}
		fmt.Printf("Created task %s in list %s\n", entry.TaskID, entry.ListID)

	case *deleteKey != "":
		if err := orch.Delete(ctx, *deleteKey, *listID); err != nil {
			log.Fatalf("Error deleting task: %v", err)
		}
		fmt.Println("Deleted.")

	case *hideKey != "":
		if err := orch.Hide(*hideKey); err != nil {
			log.Fatalf("Error hiding item: %v", err)
		}

	case *unhideKey != "":
		if err := orch.Unhide(*unhideKey); err != nil {
			log.Fatalf("Error unhiding item: %v", err)
		}

	case *showHidden:
		keys, err := orch.Hidden()
		if err != nil {
			log.Fatalf("Error reading hidden keys: %v", err)
		}
		if keys == nil {
			keys = []string{}
		}
		printJSON(keys)

	case *serve:
		if err := runDaemon(ctx, cfg, orch); err != nil {
			log.Fatalf("Daemon failed: %v", err)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runDaemon reconciles once at startup, then on the configured cron
// schedule until interrupted.
func runDaemon(ctx context.Context, cfg *config.Config, orch *qsync.Orchestrator) error {
	syncJob := func(ctx context.Context) error {
		summary, err := orch.SyncNow(ctx)
		if err != nil {
			return err
		}
		log.Printf("Synced %d items, %d found, authed=%v", summary.Synced, summary.Found, summary.Authed)
		return nil
	}

	if err := syncJob(ctx); err != nil {
		log.Printf("Initial sync failed: %v", err)
	}

	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		return err
	}
	if err := sched.AddJob("sync", cfg.SyncSchedule, syncJob); err != nil {
		return err
	}
	sched.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down")
	<-sched.Stop().Done()
	return nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Error encoding output: %v", err)
	}
}
