package config

import (
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// HealthChecker reports the dependencies the server was started with. A nil
// dependency is not configured and is left out of the report.
type HealthChecker struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
	redis    *redis.Client
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, rdb *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient, redis: rdb}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	check := func(name string, err error) {
		if err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			return
		}
		deps[name] = gin.H{"status": "up"}
	}

	if h.db != nil {
		check("postgres", h.db.PingContext(ctx))
	}
	if h.amqpConn != nil {
		check("rabbitmq", closedErr(h.amqpConn.IsClosed(), "connection closed"))
	}
	if h.mqtt != nil {
		check("mqtt", closedErr(!h.mqtt.IsConnected(), "not connected"))
	}
	if h.redis != nil {
		check("redis", h.redis.Ping(ctx).Err())
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}

type healthError string

func (e healthError) Error() string { return string(e) }

func closedErr(down bool, msg string) error {
	if down {
		return healthError(msg)
	}
	return nil
}
