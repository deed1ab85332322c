package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"soaiadmin/internal/adapters/api"
	web "soaiadmin/internal/adapters/http"
	"soaiadmin/internal/adapters/http/perf"
	"soaiadmin/internal/adapters/storage"
	credentialStore "soaiadmin/internal/adapters/storage/credential"
	prefsStore "soaiadmin/internal/adapters/storage/prefs"
	"soaiadmin/internal/application/roster"
	"soaiadmin/internal/application/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	apiBase := os.Getenv("SOAI_API_BASE")
	if apiBase == "" {
		log.Fatal("SOAI_API_BASE is required (base URL of the membership API)")
	}

	// Local state database with WAL mode and busy timeout. This holds console
	// state only (API credential, operator preferences); the roster lives
	// upstream.
	dbPath := envOrDefault("SOAI_STATE_DB", "console_state.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open state database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("state database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize state database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	credentials := credentialStore.NewSQLiteStore(timedDB)
	prefs := prefsStore.NewSQLiteStore(timedDB)

	sess := session.NewStore(credentials)
	client := api.NewClient(apiBase, sess).WithCollector(collector)

	// Page size survives restarts when the operator chose one explicitly.
	pageSize := roster.DefaultPageSize
	if v, err := prefs.Get(context.Background(), prefsStore.KeyRosterPageSize); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageSize = n
		}
	}
	rosterState := roster.NewState(client, pageSize)

	deps := &web.Deps{
		API:     client,
		Session: sess,
		Roster:  rosterState,
		Prefs:   prefs,
	}

	mux := web.NewMux("static", deps, collector)

	addr := envOrDefault("SOAI_LISTEN_ADDR", ":8080")
	log.Printf("SOAI admin console %s starting on %s (env=%s, api=%s)",
		version, addr, envOrDefault("SOAI_ENV", "development"), apiBase)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
