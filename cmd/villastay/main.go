package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"villastay/internal/app/commands"
	availabilityapp "villastay/internal/app/handlers/availability"
	bookingapp "villastay/internal/app/handlers/booking"
	catalogapp "villastay/internal/app/handlers/catalog"
	chargesapp "villastay/internal/app/handlers/charges"
	invoiceapp "villastay/internal/app/handlers/invoice"
	propertiesapp "villastay/internal/app/handlers/properties"
	"villastay/internal/app/middleware"
	appoutbox "villastay/internal/app/outbox"
	"villastay/internal/app/policies"
	"villastay/internal/app/queries"
	"villastay/internal/app/uow"
	domainproperty "villastay/internal/domain/property"
	"villastay/internal/domain/shared/money"
	"villastay/internal/infra/broker/kafka"
	"villastay/internal/infra/config"
	mongodb "villastay/internal/infra/db/mongo"
	ginserver "villastay/internal/infra/http/gin"
	"villastay/internal/infra/obs"
	infraoutbox "villastay/internal/infra/outbox"
	"villastay/internal/infra/payments"
	"villastay/internal/infra/storage/memory"
	"villastay/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	if err := app.loadFixtures(ctx, cfg.FixturesDir, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close(logger)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "persistence", cfg.PersistenceMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	factory  uow.UoWFactory
	worker   *infraoutbox.Worker
	producer *kafka.Producer
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		factory uow.UoWFactory
		box     appoutbox.Outbox
		worker  *infraoutbox.Worker
		prod    *kafka.Producer
		ready   = func() error { return nil }
	)

	switch cfg.PersistenceMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			return application{}, fmt.Errorf("mongo ping: %w", err)
		}
		factory = mongodb.NewFactory(client.DB)
		store := infraoutbox.NewStore(client.DB)
		box = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			prod, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    prod,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "app://villastay",
				Backoff:     cfg.RetryBackoff,
			}
		}
	default:
		factory = memory.Factory{
			PropertyRepo: memory.NewPropertyRepository(),
			BookingRepo:  memory.NewBookingRepository(),
			RuleRepo:     memory.NewRuleRepository(),
			ChargeRepo:   memory.NewChargeRepository(),
		}
		box = memory.NewOutbox()
	}

	var archiver policies.InvoiceArchiver = s3.NoopArchiver{}
	if cfg.S3Endpoint != "" {
		a, err := s3.NewArchiver(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, "", logger)
		if err != nil {
			return application{}, fmt.Errorf("s3 archiver: %w", err)
		}
		archiver = a
	}

	paymentsPort := payments.NewMemoryProvider()

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	requestHandler := &bookingapp.RequestBookingHandler{UoWFactory: factory, Payments: paymentsPort, Outbox: box}
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), requestHandler)

	lifecycle := &bookingapp.LifecycleHandler{UoWFactory: factory, Payments: paymentsPort, Outbox: box}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmDepositCommand{}.Key(),
		commands.HandlerFunc[bookingapp.ConfirmDepositCommand, any](wrapAny(lifecycle.ConfirmDeposit)))
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckInCommand, any](wrapAny(lifecycle.CheckIn)))
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CancelBookingCommand, any](wrapAny(lifecycle.Cancel)))
	commands.RegisterHandler(commandBus, bookingapp.RecordPaymentCommand{}.Key(),
		commands.HandlerFunc[bookingapp.RecordPaymentCommand, any](wrapAny(lifecycle.RecordPayment)))
	commands.RegisterHandler(commandBus, bookingapp.RemoveBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.RemoveBookingCommand, any](wrapAny(lifecycle.Remove)))

	chargeHandler := &chargesapp.Handler{UoWFactory: factory}
	commands.RegisterHandler(commandBus, chargesapp.AddChargeCommand{}.Key(),
		commands.HandlerFunc[chargesapp.AddChargeCommand, any](wrapAny(chargeHandler.Add)))
	commands.RegisterHandler(commandBus, chargesapp.UpdateQuantityCommand{}.Key(),
		commands.HandlerFunc[chargesapp.UpdateQuantityCommand, any](wrapAny(chargeHandler.UpdateQuantity)))
	commands.RegisterHandler(commandBus, chargesapp.RemoveChargeCommand{}.Key(),
		commands.HandlerFunc[chargesapp.RemoveChargeCommand, any](wrapAny(chargeHandler.Remove)))

	invoiceHandler := &invoiceapp.Handler{UoWFactory: factory, Archiver: archiver, Outbox: box}
	commands.RegisterHandler(commandBus, invoiceapp.FinalizeCheckoutCommand{}.Key(),
		commands.HandlerFunc[invoiceapp.FinalizeCheckoutCommand, any](wrapAny(invoiceHandler.FinalizeCheckout)))
	queries.RegisterHandler(queryBus, invoiceapp.GetInvoiceQuery{}.Key(),
		queries.HandlerFunc[invoiceapp.GetInvoiceQuery, any](wrapAny(invoiceHandler.Get)))

	catalogHandler := &catalogapp.Handler{UoWFactory: factory}
	commands.RegisterHandler(commandBus, catalogapp.CreateRuleCommand{}.Key(),
		commands.HandlerFunc[catalogapp.CreateRuleCommand, any](wrapAny(catalogHandler.CreateRule)))
	commands.RegisterHandler(commandBus, catalogapp.SetRuleActiveCommand{}.Key(),
		commands.HandlerFunc[catalogapp.SetRuleActiveCommand, any](wrapAny(catalogHandler.SetRuleActive)))
	queries.RegisterHandler(queryBus, catalogapp.ListRulesQuery{}.Key(),
		queries.HandlerFunc[catalogapp.ListRulesQuery, any](wrapAny(catalogHandler.ListRules)))
	queries.RegisterHandler(queryBus, catalogapp.ApplicableRulesQuery{}.Key(),
		queries.HandlerFunc[catalogapp.ApplicableRulesQuery, any](wrapAny(catalogHandler.ApplicableRules)))

	availabilityHandler := &availabilityapp.Handler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, availabilityapp.CheckRangeQuery{}.Key(),
		queries.HandlerFunc[availabilityapp.CheckRangeQuery, any](wrapAny(availabilityHandler.CheckRange)))

	propertyHandler := &propertiesapp.Handler{UoWFactory: factory}
	queries.RegisterHandler(queryBus, propertiesapp.ListPropertiesQuery{}.Key(),
		queries.HandlerFunc[propertiesapp.ListPropertiesQuery, any](wrapAny(propertyHandler.List)))
	queries.RegisterHandler(queryBus, propertiesapp.GetPropertyQuery{}.Key(),
		queries.HandlerFunc[propertiesapp.GetPropertyQuery, any](wrapAny(propertyHandler.Get)))
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(),
		queries.HandlerFunc[bookingapp.GetBookingQuery, any](wrapAny(lifecycle.Get)))
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(),
		queries.HandlerFunc[bookingapp.ListGuestBookingsQuery, any](wrapAny(lifecycle.ListByGuest)))

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.PropertyLock(),
		middleware.BookingLock(),
		middleware.Transaction(factory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
	)

	return application{
		handlers: ginserver.Handlers{
			Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
			Property:     ginserver.PropertyHandler{Queries: queryBusWithMiddleware},
			Catalog:      ginserver.CatalogHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Charges:      ginserver.ChargesHandler{Commands: commandBusWithMiddleware},
			Invoice:      ginserver.InvoiceHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		},
		factory:  factory,
		worker:   worker,
		producer: prod,
		ready:    ready,
	}, nil
}

// wrapAny adapts a typed handler method to the untyped result the bus
// registry stores.
func wrapAny[C any, R any](fn func(context.Context, C) (R, error)) func(context.Context, C) (any, error) {
	return func(ctx context.Context, cmd C) (any, error) {
		return fn(ctx, cmd)
	}
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}
}

type propertyFixture struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	NightlyRate string   `json:"nightly_rate"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities"`
	Rooms       []string `json:"rooms"`
}

// loadFixtures imports seed properties so a fresh memory-mode instance has
// something to book against.
func (a application) loadFixtures(ctx context.Context, dir string, logger *slog.Logger) error {
	if dir == "" {
		dir = "data"
	}
	path := filepath.Join(dir, "properties.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	unit, err := a.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	for _, fx := range fixtures {
		rate, err := decimal.NewFromString(fx.NightlyRate)
		if err != nil {
			logger.Error("fixture rate invalid", "property_id", fx.ID, "error", err)
			continue
		}
		rooms := make([]domainproperty.PropertyID, 0, len(fx.Rooms))
		for _, id := range fx.Rooms {
			rooms = append(rooms, domainproperty.PropertyID(id))
		}
		p := &domainproperty.Property{
			ID:          domainproperty.PropertyID(fx.ID),
			Type:        domainproperty.Type(fx.Type),
			Name:        fx.Name,
			Location:    fx.Location,
			NightlyRate: money.FromDecimal(rate),
			Capacity:    fx.Capacity,
			Amenities:   fx.Amenities,
			Rooms:       rooms,
		}
		if err := unit.Properties().Save(ctx, p); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", fx.ID)
	}
	return unit.Commit(ctx)
}
