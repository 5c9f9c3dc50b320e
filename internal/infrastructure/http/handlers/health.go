package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Dependency is one backing service probed by the readiness check.
// A failing Required dependency makes the service unavailable; an optional
// one only degrades it.
type Dependency struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

// PostgresDependency probes the relational store. It is always required.
func PostgresDependency(db *sql.DB) Dependency {
	return Dependency{Name: "postgres", Required: true, Ping: db.PingContext}
}

// RedisDependency probes the session cache.
func RedisDependency(rdb *redis.Client) Dependency {
	return Dependency{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// MongoDependency probes the audit store.
func MongoDependency(db *mongo.Database) Dependency {
	return Dependency{Name: "mongodb", Ping: func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}}
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
type HealthDependenciesHandler struct {
	deps []Dependency
}

func NewHealthDependenciesHandler(deps ...Dependency) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	statuses := make(map[string]dependencyStatus, len(h.deps))
	status := "ok"
	httpStatus := http.StatusOK

	for _, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			statuses[dep.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			if dep.Required {
				status = "unavailable"
				httpStatus = http.StatusServiceUnavailable
			} else if httpStatus == http.StatusOK {
				status = "degraded"
			}
			continue
		}
		statuses[dep.Name] = dependencyStatus{Status: "ok"}
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: statuses,
	})
}
