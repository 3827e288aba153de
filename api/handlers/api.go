package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/api"
	"github.com/minnowkids/minnow-push-api/api/scheduler"
	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
	"github.com/minnowkids/minnow-push-api/push"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Engine    *push.Engine
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewAdminDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	sub := Subscription{DB: databases.NewSubscriptionDatabase(a.dbHelper)}
	c := Campaign{
		CDB:    databases.NewCampaignDatabase(a.dbHelper),
		DDB:    databases.NewDeliveryDatabase(a.dbHelper),
		Engine: a.Engine,
	}
	t := Template{DB: databases.NewTemplateDatabase(a.dbHelper)}
	e := Event{Writer: &push.EventWriter{Events: databases.NewEventDatabase(a.dbHelper)}}
	adm := Admin{ADB: databases.NewAdminDatabase(a.dbHelper)}
	up := Upload{}
	met := Metrics{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")

	// storefront-facing, authenticated with the storefront session upstream
	apiCreate.Handle("/push/subscriptions", http.HandlerFunc(sub.SyncSubscriptionHandler)).Methods("POST")
	apiCreate.Handle("/push/subscriptions/user/{user_id}", http.HandlerFunc(sub.DeactivateByUserHandler)).Methods("DELETE")
	apiCreate.Handle("/push/subscriptions/user/{user_id}", api.Middleware(http.HandlerFunc(sub.SubscriptionsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/events", http.HandlerFunc(e.QueueEventHandler)).Methods("POST")

	// back-office composer routes
	apiCreate.Handle("/campaigns", api.Middleware(http.HandlerFunc(c.CreateCampaignHandler))).Methods("POST")
	apiCreate.Handle("/campaigns", api.Middleware(http.HandlerFunc(c.CampaignHandler))).Methods("GET")
	apiCreate.Handle("/campaigns/upload-image", api.Middleware(http.HandlerFunc(up.UploadImageHandler))).Methods("POST")
	apiCreate.Handle("/campaigns/{campaign_id}", api.Middleware(http.HandlerFunc(c.CampaignByIDHandler))).Methods("GET")
	apiCreate.Handle("/campaigns/{campaign_id}/deliveries", api.Middleware(http.HandlerFunc(c.CampaignDeliveriesHandler))).Methods("GET")
	apiCreate.Handle("/campaigns/{campaign_id}/retry", api.Middleware(http.HandlerFunc(c.RetryCampaignHandler))).Methods("POST")

	apiCreate.Handle("/push/templates", api.Middleware(http.HandlerFunc(t.CreateTemplateHandler))).Methods("POST")
	apiCreate.Handle("/push/templates", api.Middleware(http.HandlerFunc(t.TemplateHandler))).Methods("GET")
	apiCreate.Handle("/push/templates/{template_id}", api.Middleware(http.HandlerFunc(t.TemplateByIDHandler))).Methods("GET")
	apiCreate.Handle("/push/templates/{template_id}", api.Middleware(http.HandlerFunc(t.UpdateTemplateHandler))).Methods("PUT")
	apiCreate.Handle("/push/templates/{template_id}", api.Middleware(http.HandlerFunc(t.DeleteTemplateHandler))).Methods("DELETE")

	apiCreate.Handle("/metrics", api.Middleware(http.HandlerFunc(met.MetricsHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("minnow-push-api has connected to the database")

	a.Engine = &push.Engine{
		Config:     &a.Config,
		Campaigns:  databases.NewCampaignDatabase(a.dbHelper),
		Deliveries: databases.NewDeliveryDatabase(a.dbHelper),
		Resolver: &push.Resolver{
			Subscriptions: databases.NewSubscriptionDatabase(a.dbHelper),
			Users:         databases.NewUserDatabase(a.dbHelper),
			Deliveries:    databases.NewDeliveryDatabase(a.dbHelper),
		},
		Gateway: push.NewGatewayClient(&a.Config),
	}

	// a pod without push credentials still serves subscriptions and events;
	// dispatch rejects up front until the credentials arrive
	if err := a.Config.ValidatePush(); err == nil {
		tokens, err := push.NewTokenSource(&a.Config)
		if err != nil {
			// a present but unparseable key is a deploy mistake, kill the pod
			zap.S().With(err).Error("failed to create push token source")
			return err
		}
		a.Engine.Tokens = tokens
	} else {
		zap.S().Warnw("push credentials not configured, dispatch disabled", "reason", err)
	}

	if n := push.NewOpsNotifier(&a.Config); n != nil {
		a.Engine.Notifier = n
	}

	a.Scheduler = scheduler.NewScheduler(
		databases.NewCampaignDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		a.Engine,
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
