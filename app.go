package main

import (
	"context"
	"fmt"

	"github.com/Pushkar2103/parkezy-new/config"
	"github.com/Pushkar2103/parkezy-new/database"
	areaRepo "github.com/Pushkar2103/parkezy-new/database/repository/area"
	bookingRepo "github.com/Pushkar2103/parkezy-new/database/repository/booking"
	memoryRepo "github.com/Pushkar2103/parkezy-new/database/repository/memory"
	slotRepo "github.com/Pushkar2103/parkezy-new/database/repository/slot"
	"github.com/Pushkar2103/parkezy-new/services/area"
	"github.com/Pushkar2103/parkezy-new/services/booking"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/services/payment"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// app holds the wired components shared by the serve and sweep commands.
type app struct {
	logger    *zap.Logger
	engine    *booking.DefaultReservationEngine
	areas     *area.DefaultAreaService
	publisher events.Publisher
	redis     []*redis.Client
}

func buildApp(withCache bool) (*app, error) {
	logger := utils.GetLogger()

	var (
		slots    slotRepo.SlotRepository
		bookings bookingRepo.BookingRepository
		areas    areaRepo.AreaRepository
		tx       database.Transactor = database.NoopTransactor{}
	)
	if config.UsesMemoryStore() {
		logger.Warn("using the in-memory store; state is lost on restart and sweeps must run in this process")
		slots, bookings, areas = memoryRepo.NewSlotStore(), memoryRepo.NewBookingStore(), memoryRepo.NewAreaStore()
	} else {
		database.InitDB()
		db := database.Database()
		mongoSlots, mongoBookings, mongoAreas := slotRepo.NewMongoSlotRepo(db), bookingRepo.NewMongoBookingRepo(db), areaRepo.NewMongoAreaRepo(db)
		for name, ensure := range map[string]func() error{
			"slots":    mongoSlots.EnsureIndexes,
			"bookings": mongoBookings.EnsureIndexes,
			"areas":    mongoAreas.EnsureIndexes,
		} {
			if err := ensure(); err != nil {
				return nil, fmt.Errorf("ensure %s indexes: %w", name, err)
			}
		}
		slots, bookings, areas = mongoSlots, mongoBookings, mongoAreas
		if config.AppConfig.UseTransactions {
			tx = database.NewMongoTransactor(database.MongoClient)
		}
	}

	a := &app{logger: logger}

	var cache area.OwnerCache = area.NopOwnerCache{}
	if withCache {
		client, err := utils.ConnectCache(context.Background())
		if err != nil {
			logger.Warn("area owner cache disabled, lookups go to the store", zap.Error(err))
		} else {
			cache = area.NewRedisOwnerCache(client, config.AppConfig.AreaCacheTTL)
			a.redis = append(a.redis, client)
		}
	}
	areaSvc, err := area.NewDefaultAreaService(areas, slots, cache, logger.Named("area"))
	if err != nil {
		return nil, err
	}
	a.areas = areaSvc

	a.publisher = events.NopPublisher{}
	if url := config.AppConfig.AMQPURL; url != "" {
		pub, err := events.NewRabbitPublisher(url, config.AppConfig.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		a.publisher = pub
	}

	if config.AppConfig.StripeKey == "" {
		logger.Warn("STRIPE_KEY is not set; priced bookings will fail to open a checkout")
	}
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     config.AppConfig.StripeKey,
		WebhookSecret: config.AppConfig.StripeWebhookSecret,
		SuccessURL:    config.AppConfig.PaymentSuccessURL,
		CancelURL:     config.AppConfig.PaymentCancelURL,
	}, logger.Named("payment"))

	a.engine = &booking.DefaultReservationEngine{
		Slots:    slots,
		Bookings: bookings,
		Registry: areaSvc,
		Gateway:  gateway,
		Tx:       tx,
		Events:   a.publisher,
		Logger:   logger.Named("engine"),
		Config: booking.EngineConfig{
			HoldGracePeriod:      config.AppConfig.HoldGracePeriod,
			CompensationAttempts: config.AppConfig.CompensationAttempts,
			CompensationBackoff:  config.AppConfig.CompensationBackoff,
			Currency:             config.AppConfig.PaymentCurrency,
		},
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("event publisher close failed", zap.Error(err))
	}
	for _, c := range a.redis {
		_ = c.Close()
	}
	if err := database.CloseDB(ctx); err != nil {
		a.logger.Warn("database disconnect failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
