package main

import (
	auth "Taper/internal/auth"
	batch "Taper/internal/calc/batch"
	cone "Taper/internal/calc/cone"
	importer "Taper/internal/calc/importer"
	report "Taper/internal/calc/report"
	config "Taper/internal/config"
	history "Taper/internal/history"
	"Taper/internal/i18n"
	repo "Taper/internal/repo"
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

// HandleList registers every route. store may be nil when accounts are disabled.
func HandleList(mux *mux.Router, cfg config.Config, store repo.Repository) {
	coneH := &cone.Handler{
		Labels:        i18n.DefaultCatalog(),
		DefaultLocale: cfg.DefaultLocale,
		Resolution:    cfg.MeshResolution,
	}
	batchH := &batch.Handler{Cone: coneH}
	importerH := &importer.Handler{Cone: coneH}
	reportH := &report.Handler{Cone: coneH}

	limiter := auth.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/labels", coneH.GetLabels).Methods("GET")
	api.HandleFunc("/tools/cone/calc", coneH.Calc).Methods("POST")
	api.HandleFunc("/tools/cone/mesh", coneH.Mesh).Methods("POST")
	api.HandleFunc("/tools/cone/stl", coneH.STL).Methods("POST")
	api.HandleFunc("/tools/cone/preview", coneH.Preview).Methods("POST")
	api.HandleFunc("/tools/cone/profile", coneH.Profile).Methods("POST")
	api.HandleFunc("/tools/cone/batch", batchH.Calc).Methods("POST")
	api.HandleFunc("/tools/cone/import", importerH.Import).Methods("POST")
	api.HandleFunc("/tools/cone/export", importerH.Export).Methods("POST")
	api.HandleFunc("/tools/cone/report", reportH.Generate).Methods("POST")

	if len(cfg.TokenKey) == 0 || store == nil {
		log.Println("TOKEN_KEY not set, accounts and history disabled")
		return
	}
	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: store, Secure: cfg.TLS()}
	historyH := &history.Handler{Repo: store, Cone: coneH}

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/history", historyH.List).Methods("GET")
	secureApi.HandleFunc("/history", historyH.Save).Methods("POST")
	secureApi.HandleFunc("/history/{id:[0-9]+}", historyH.Get).Methods("GET")
}

func openStore(ctx context.Context, cfg config.Config) (repo.Repository, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory storage")
		return repo.NewMemory(), nil, nil
	}
	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	pg := repo.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, db, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	store, db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	mux := mux.NewRouter()
	HandleList(mux, cfg, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Starting server on %s", cfg.Addr)
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	wg.Wait()
	log.Println("Server stopped")
}
