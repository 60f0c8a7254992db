package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/rmarben/usergraph/internal/auth"
	"github.com/rmarben/usergraph/internal/config"
	sharedEvents "github.com/rmarben/usergraph/internal/shared/events"
	infraEvents "github.com/rmarben/usergraph/internal/shared/infra/events"
	sharedBus "github.com/rmarben/usergraph/internal/shared/platform/bus"
	userApp "github.com/rmarben/usergraph/internal/user/application"
	userDomain "github.com/rmarben/usergraph/internal/user/domain"
	userGraphql "github.com/rmarben/usergraph/internal/user/infra/inbound/graphql"
	"github.com/rmarben/usergraph/internal/user/infra/outbound/analytics"
	chAudit "github.com/rmarben/usergraph/internal/user/infra/outbound/analytics/clickhouse"
	userCache "github.com/rmarben/usergraph/internal/user/infra/outbound/cache"
	userRepo "github.com/rmarben/usergraph/internal/user/infra/outbound/db/mongodb"
	"github.com/rmarben/usergraph/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	repo, err := userRepo.NewUserRepoMongoDB(ctx, client, cfg.MongoDB)
	if err != nil {
		log.Fatal("failed to initialize MongoDB repository", zap.Error(err))
	}

	// ---------------- Cache ----------------
	var cacheInstance userDomain.UserCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = userCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = userCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Audit ----------------
	var audit userDomain.AuthAudit = analytics.NopAudit{}
	if cfg.ClickHouseAddr != "" {
		auditRepo, err := chAudit.NewAuthAuditRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, auditoría deshabilitada", zap.Error(err))
		} else {
			recorder := analytics.NewRecorder(auditRepo, cfg.AuditPeriod, cfg.AuditLimit, log)
			recorder.Start(ctx)
			audit = recorder
			log.Info("✅ ClickHouse conectado, auditoría de logins habilitada")
		}
	}

	// ---------------- Events ---------------
	var eventPublisher sharedBus.EventPublisher

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopicUser,
		})
		defer writer.Close()

		eventPublisher = infraEvents.NewKafkaPublisher(writer, log)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		bus := infraEvents.NewInMemoryEventBus(cfg.KafkaTopicUser)
		eventPublisher = bus

		// Listener local que deja traza de los eventos publicados.
		events := bus.Subscribe(10)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-events:
					if ie, ok := ev.(sharedEvents.IntegrationEvent); ok {
						log.Info("🎧 Evento de usuario recibido", zap.String("type", ie.Type))
					}
				}
			}
		}()
	}

	// --------------- Servicio --------------
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := userApp.NewUserService(repo, cacheInstance, eventPublisher, log)
	authService := userApp.NewAuthService(repo, tokens, audit, eventPublisher, log)

	// ---------------- HTTP ----------------
	resolver := userGraphql.NewResolver(userService, authService, log)
	schema, err := userGraphql.NewSchema(resolver)
	if err != nil {
		log.Fatal("failed to build GraphQL schema", zap.Error(err))
	}

	handler := userGraphql.NewHandler(schema, log)
	router := gin.Default()
	userGraphql.RegisterRoutes(router, handler, tokens)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
