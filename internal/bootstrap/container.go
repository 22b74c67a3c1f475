package bootstrap

import (
	"log"
	"time"

	"estate-crm-be/internal/config"
	"estate-crm-be/internal/controller"
	"estate-crm-be/internal/pkg/dedup"
	"estate-crm-be/internal/pkg/logger"
	"estate-crm-be/internal/pkg/mailer"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/implementation"
	"estate-crm-be/internal/repository/unitofwork"
	"estate-crm-be/internal/service"

	pktNats "estate-crm-be/pkg/nats"
	"estate-crm-be/pkg/payments"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BillingController  controller.IBillingController
	ContactController  controller.IContactController
	DealController     controller.IDealController
	NoteController     controller.INoteController
	TaskController     controller.ITaskController
	CalendarController controller.ICalendarController
	UserController     controller.IUserController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	serverutils.ConfigureJwt(cfg.JWT.Secret)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	var natsPub *pktNats.Publisher
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		natsPub = pub
	}

	// Webhook dedup: shared window when redis is configured, in-process
	// otherwise. The durable event log backstops both.
	var deduper dedup.Deduper
	if cfg.App.RedisURL != "" {
		redisDedup, err := dedup.NewRedisDeduper(cfg.App.RedisURL, 24*time.Hour)
		if err != nil {
			log.Printf("[WARN] Failed to init redis dedup: %v. Falling back to memory", err)
			deduper = dedup.NewMemoryDeduper(24 * time.Hour)
		} else {
			deduper = redisDedup
		}
	} else {
		deduper = dedup.NewMemoryDeduper(24 * time.Hour)
	}

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	// 3. Services
	var billingPublisher service.EventPublisher
	if natsPub != nil {
		billingPublisher = natsPub
	}

	billingService := service.NewBillingService(
		implementation.NewSubscriptionRepository(db),
		implementation.NewUserRepository(db),
		gateway,
		deduper,
		billingPublisher,
		emailService,
		sysLogger,
		cfg,
	)

	contactService := service.NewContactService(uowFactory)
	dealService := service.NewDealService(uowFactory, billingService, cfg.Billing.FreeDealLimit)
	noteService := service.NewNoteService(uowFactory)
	taskService := service.NewTaskService(uowFactory)
	calendarService := service.NewCalendarService(uowFactory)
	userService := service.NewUserService(uowFactory, billingService)

	// 4. Controllers
	return &Container{
		BillingController:  controller.NewBillingController(billingService),
		ContactController:  controller.NewContactController(contactService),
		DealController:     controller.NewDealController(dealService),
		NoteController:     controller.NewNoteController(noteService),
		TaskController:     controller.NewTaskController(taskService),
		CalendarController: controller.NewCalendarController(calendarService),
		UserController:     controller.NewUserController(userService),
		Logger:             sysLogger,
	}
}
