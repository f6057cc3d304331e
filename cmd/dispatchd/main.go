// dispatchd hosts the agent specialization and dispatch runtime behind an
// HTTP surface: role and knowledge-domain registries, the specialization
// store, the performance accountant, the dispatcher, and the prompt
// synthesizer, backed by a remote document store.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/config"
	"dev.helix.dispatch/internal/events"
	"dev.helix.dispatch/internal/handlers"
	"dev.helix.dispatch/internal/knowledge"
	"dev.helix.dispatch/internal/observability/metrics"
	"dev.helix.dispatch/internal/persistence"
	"dev.helix.dispatch/internal/roles"
	"dev.helix.dispatch/internal/specialization"
)

func main() {
	cfg := config.Load()
	if path := os.Getenv("DISPATCH_CONFIG"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load config file")
		}
		cfg = loaded
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	var tokens persistence.TokenSource
	if cfg.Store.AuthSecret != "" {
		tokens = persistence.NewJWTTokenSource(cfg.Store.AuthSecret, cfg.Store.AuthIssuer, "dispatchd", cfg.Store.TokenTTL.Std())
	}
	gateway := persistence.NewGateway(cfg.Store.URL, tokens, log)
	gateway.SetHTTPClient(&http.Client{Timeout: cfg.Store.Timeout.Std()})

	roleRegistry := roles.NewRegistry()
	roleRegistry.SetLogger(log)

	// Hydrate the persisted catalogues concurrently; each tolerates an
	// unreachable store and comes up with in-memory defaults.
	bootCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.Store.Timeout.Std())
	defer cancel()

	var (
		domainRegistry *knowledge.Registry
		store          *specialization.Store
	)
	g, gctx := errgroup.WithContext(bootCtx)
	g.Go(func() error {
		domainRegistry = knowledge.NewRegistry(gctx, gateway, log)
		return nil
	})
	g.Go(func() error {
		store = specialization.NewStore(gctx, gateway, roleRegistry, log)
		return nil
	})
	_ = g.Wait()

	collector := metrics.NewCollector()
	bus := events.NewBus()
	store.Instrument(collector, bus)

	directory := agenthost.NewLocalDirectory()

	controller := specialization.NewController(store, roleRegistry, directory, log)
	controller.Instrument(collector, bus)
	dispatcher := specialization.NewDispatcher(store, roleRegistry, directory, log)
	dispatcher.Instrument(collector, bus)
	accountant := specialization.NewAccountant(store, log)
	accountant.Instrument(collector, bus)
	synthesizer := specialization.NewPromptSynthesizer(store, roleRegistry, domainRegistry, log)

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"roles":           roleRegistry.Count(),
			"domains":         domainRegistry.Count(),
			"specializations": store.Count(),
			"time":            time.Now().UTC(),
		})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	handler := handlers.NewSpecializationHandler(
		controller, store, dispatcher, accountant, synthesizer,
		roleRegistry, domainRegistry, directory,
	)
	handler.RegisterRoutes(router)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.WithFields(logrus.Fields{
		"addr":  addr,
		"store": cfg.Store.URL,
	}).Info("dispatchd listening")

	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
