package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []dependencyCheck
}

// NewHealthHandler probes each dependency that is not nil.
func NewHealthHandler(dbPool *pgxpool.Pool, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	h := &HealthHandler{}
	if dbPool != nil {
		h.checks = append(h.checks, dependencyCheck{"postgres", dbPool.Ping})
	}
	if redisClient != nil {
		h.checks = append(h.checks, dependencyCheck{"redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	if amqpConn != nil {
		h.checks = append(h.checks, dependencyCheck{"rabbitmq", func(context.Context) error {
			if amqpConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}
	return h
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for _, dc := range h.checks {
		if err := dc.check(ctx); err != nil {
			body[dc.name] = "unavailable"
			body["status"] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		body[dc.name] = "connected"
	}

	c.JSON(status, body)
}
