package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/api/scheduler"
	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/services"
)

// requestTimeout bounds every API request
const requestTimeout = 30 * time.Second

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Updates   *LocUpdates
	Scheduler *scheduler.Scheduler

	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	tokens := services.NewAuthenticationService(a.Config.JWTSecret, a.Config.Owner, services.DefaultTokenTTL)
	authenticator := api.NewAuthenticator(tokens, a.Config.OwnerPasswordHash)

	var notifier services.Notifier
	if a.Config.SendgridAPIKey != "" {
		notifier = services.NewNotificationService(a.Config.SendgridAPIKey, a.Config.MailFrom, a.Config.Templates)
	}

	loc := LocRequest{DB: databases.NewLocRequestDatabase(a.dbHelper), Auth: tokens}
	protection := ProtectionRequest{
		DB:         databases.NewProtectionRequestDatabase(a.dbHelper),
		Auth:       tokens,
		Notifier:   notifier,
		OwnerEmail: a.Config.OwnerEmail,
	}
	tx := Transaction{DB: databases.NewTransactionDatabase(a.dbHelper)}

	r := api.New(a.Metrics, a.Registry)
	r.HandleFunc("/ws/loc-updates", a.Updates.HandleWebSocket)

	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))
	guard := authenticator.Middleware

	apiCreate.Handle("/auth/token", guard(http.HandlerFunc(authenticator.CreateToken))).Methods("POST")

	apiCreate.Handle("/loc-request", guard(http.HandlerFunc(loc.CreateLocRequestHandler))).Methods("POST")
	apiCreate.Handle("/loc-request", guard(http.HandlerFunc(loc.FetchLocRequestsHandler))).Methods("PUT")
	apiCreate.Handle("/loc-request/{request_id}", guard(http.HandlerFunc(loc.LocRequestByIDHandler))).Methods("GET")
	apiCreate.Handle("/loc-request/{request_id}/accept", guard(http.HandlerFunc(loc.AcceptLocRequestHandler))).Methods("POST")
	apiCreate.Handle("/loc-request/{request_id}/reject", guard(http.HandlerFunc(loc.RejectLocRequestHandler))).Methods("POST")
	apiCreate.Handle("/loc-request/{request_id}/files", guard(http.HandlerFunc(loc.AddFileHandler))).Methods("POST")
	apiCreate.Handle("/loc-request/{request_id}/metadata", guard(http.HandlerFunc(loc.AddMetadataHandler))).Methods("POST")
	apiCreate.Handle("/loc-request/{request_id}/links", guard(http.HandlerFunc(loc.AddLinkHandler))).Methods("POST")

	apiCreate.Handle("/protection-request", guard(http.HandlerFunc(protection.CreateProtectionRequestHandler))).Methods("POST")
	apiCreate.Handle("/protection-request", guard(http.HandlerFunc(protection.FetchProtectionRequestsHandler))).Methods("PUT")
	apiCreate.Handle("/protection-request/{request_id}/accept", guard(http.HandlerFunc(protection.AcceptProtectionRequestHandler))).Methods("POST")
	apiCreate.Handle("/protection-request/{request_id}/reject", guard(http.HandlerFunc(protection.RejectProtectionRequestHandler))).Methods("POST")
	apiCreate.Handle("/protection-request/{request_id}/recovery-info", guard(http.HandlerFunc(protection.RecoveryInfoHandler))).Methods("PUT")

	apiCreate.Handle("/transaction", guard(http.HandlerFunc(tx.FetchTransactionsHandler))).Methods("PUT")

	return r
}

// Initialize is invoked by main to connect with the database, prepare the
// collections and build the router and the block sync scheduler
func (a *App) Initialize(ctx context.Context) error {
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	a.Metrics = metrics.New(a.Registry)
	a.Updates = NewLocUpdates(a.Metrics)

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	zap.S().Info("legal-officer-api has connected to the database")

	locDB := databases.NewLocRequestDatabase(a.dbHelper)
	if err := locDB.EnsureSchema(ctx); err != nil {
		zap.S().Errorw("failed to install loc request schema", "error", err)
		return err
	}

	if a.Config.SyncEnabled {
		if a.Config.SidecarURL == "" {
			return errors.New("SIDECAR_URL is required when SYNC_ENABLED is set")
		}
		blocks := services.NewBlockSynchronizer(
			chain.NewSidecarClient(a.Config.SidecarURL),
			databases.NewSyncPointDatabase(a.dbHelper),
			a.Metrics,
			services.NewLocSynchronizer(locDB, a.Updates, a.Metrics),
			services.NewProtectionSynchronizer(databases.NewProtectionRequestDatabase(a.dbHelper), a.Metrics),
			services.NewTransactionSynchronizer(databases.NewTransactionDatabase(a.dbHelper), a.Metrics),
		)
		a.Scheduler = scheduler.NewScheduler(blocks, databases.NewSchedulerLockDatabase(a.dbHelper), a.Config.SyncSchedule)
	}

	a.Router = a.New()
	return nil
}

// Close stops the scheduler, disconnects websocket clients and the database
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Updates != nil {
		a.Updates.Close()
	}
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// requireOwner writes a 403 unless the caller is the node owner
func requireOwner(auth *services.AuthenticationService, w http.ResponseWriter, r *http.Request) bool {
	if !auth.IsNodeOwner(api.AuthenticatedAddress(r.Context())) {
		config.ErrorStatus("forbidden", http.StatusForbidden, w, errors.New("only the legal officer of this node may do this"))
		return false
	}
	return true
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock()
}
