package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/nandanugg/tourist-safety/config"
	"github.com/nandanugg/tourist-safety/module/core/geo"
	"github.com/nandanugg/tourist-safety/module/core/internal/client/genai"
	"github.com/nandanugg/tourist-safety/module/core/internal/client/maps"
	handler "github.com/nandanugg/tourist-safety/module/core/internal/handler/http"
	"github.com/nandanugg/tourist-safety/module/core/internal/handler/subscriber"
	"github.com/nandanugg/tourist-safety/module/core/internal/handler/ws"
	"github.com/nandanugg/tourist-safety/module/core/internal/metrics"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database/dynamo"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database/memory"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/publisher"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/storage"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/storage/s3"
	"github.com/nandanugg/tourist-safety/module/core/service"
	"github.com/nandanugg/tourist-safety/module/core/tracking"
)

// Deps are the connections opened by the caller. Any of them may be nil when
// the matching feature is not configured.
type Deps struct {
	DB       *sql.DB
	AMQP     *amqp.Connection
	MQTT     mqtt.Client
	Redis    *redis.Client
	DynamoDB *dynamodb.Client
	S3       *awss3.Client
	Logger   *slog.Logger
}

type Module struct {
	UserSvc      *service.UserService
	GeofenceSvc  *service.GeofenceService
	TrackingSvc  *service.TrackingService
	AssistantSvc *service.AssistantService

	userHandler      *handler.UserHandler
	zoneHandler      *handler.ZoneHandler
	assistantHandler *handler.AssistantHandler
	trackHandler     *ws.TrackHandler
	subscriber       *subscriber.LocationSubscriber
}

func Build(ctx context.Context, cfg *config.Config, deps Deps) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	directory, err := buildDirectory(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	zones, err := config.LoadZones(cfg)
	if err != nil {
		return nil, err
	}
	geofenceSvc := service.NewGeofenceService(geo.NewRegistry(zones))
	logger.Info("red zones loaded", "count", len(zones))

	var alerter tracking.Alerter
	if deps.AMQP != nil {
		var pub publisher.AlertPublisher
		pub, err = rabbitmq.NewAlertPublisher(deps.AMQP)
		if err != nil {
			return nil, fmt.Errorf("alert publisher: %w", err)
		}
		alerter = tracking.AlertFunc(pub.PublishAlert)
	}

	trackingSvc := service.NewTrackingService(geofenceSvc.Matcher(), directory, alerter, tracking.Config{
		Debounce: cfg.PositionDebounce,
		Logger:   logger,
	})
	userSvc := service.NewUserService(directory, trackingSvc)

	var places maps.PlaceFinder
	if cfg.MapsAPIKey != "" {
		places = maps.NewClient(cfg.MapsAPIKey, "", logger)
		if deps.Redis != nil {
			places = maps.NewCachedFinder(places, deps.Redis, cfg.PlacesCacheTTL, logger)
		}
	}

	var archive storage.IncidentArchive
	if deps.S3 != nil && cfg.IncidentBucket != "" {
		archive = s3.NewIncidentArchive(deps.S3, cfg.IncidentBucket, cfg.AWSRegion)
	}

	gen := genai.NewClient(cfg.GenAIAPIKey, cfg.GenAIBaseURL, cfg.GenAIModel)
	assistantSvc := service.NewAssistantService(gen, places, archive, logger)

	m := &Module{
		UserSvc:          userSvc,
		GeofenceSvc:      geofenceSvc,
		TrackingSvc:      trackingSvc,
		AssistantSvc:     assistantSvc,
		zoneHandler:      handler.NewZoneHandler(geofenceSvc),
		assistantHandler: handler.NewAssistantHandler(assistantSvc),
		trackHandler:     ws.NewTrackHandler(trackingSvc, logger),
	}

	if deps.MQTT != nil {
		m.subscriber = subscriber.NewLocationSubscriber(deps.MQTT, cfg.PositionTimeout, logger)
		m.userHandler = handler.NewUserHandler(userSvc, trackingSvc, m.subscriber)
	} else {
		m.userHandler = handler.NewUserHandler(userSvc, trackingSvc, nil)
	}

	return m, nil
}

func buildDirectory(ctx context.Context, cfg *config.Config, deps Deps) (database.UserDirectory, error) {
	switch cfg.DirectoryBackend {
	case config.BackendMemory:
		return memory.NewUserRepo(), nil
	case config.BackendPostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("directory backend %q needs a postgres connection", cfg.DirectoryBackend)
		}
		if err := postgres.EnsureSchema(ctx, deps.DB); err != nil {
			return nil, err
		}
		return postgres.NewUserRepo(deps.DB), nil
	case config.BackendDynamoDB:
		if deps.DynamoDB == nil {
			return nil, fmt.Errorf("directory backend %q needs a dynamodb client", cfg.DirectoryBackend)
		}
		return dynamo.NewUserRepo(deps.DynamoDB, cfg.DynamoDBTable), nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.DirectoryBackend)
	}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.userHandler.Register(r)
	m.zoneHandler.Register(r)
	m.assistantHandler.Register(r)
	m.trackHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// StartSubscribers subscribes to device positions. It is a no-op without an
// MQTT connection.
func (m *Module) StartSubscribers() error {
	if m.subscriber == nil {
		return nil
	}
	return m.subscriber.Start()
}

// Shutdown stops every live tracking session. Pending position writes are
// dropped.
func (m *Module) Shutdown() {
	m.TrackingSvc.Shutdown()
}
