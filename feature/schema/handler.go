package schema

import (
	"errors"
	"strconv"

	"entity-sync/core/logger"
	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"
	"entity-sync/core/selector"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for schema reports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the schema routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schema")
	group.Get("/entities", h.HandleListEntities)
	group.Get("/entities/:name", h.HandleGetEntity)
	group.Get("/entities/:name/paths/:path", h.HandleResolvePath)
	group.Get("/plan", h.HandlePlan)
	group.Get("/history", h.HandleHistory)
	group.Get("/scripts", h.HandleListScripts)
	group.Get("/scripts/:name", h.HandleGetScript)
	group.Delete("/scripts/:name", h.HandleDeleteScript)
}

// EntityView is the JSON form of a compiled entity.
type EntityView struct {
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Properties []PropertyView `json:"properties"`
}

// PropertyView is the JSON form of a compiled property.
type PropertyView struct {
	Name    string `json:"name"`
	Column  string `json:"column"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Ordinal int    `json:"ordinal"`
}

func newEntityView(m *mapping.EntityModel) EntityView {
	props := m.Properties()
	v := EntityView{Name: m.Name(), Kind: m.Kind().String(), Properties: make([]PropertyView, len(props))}
	for i, p := range props {
		v.Properties[i] = PropertyView{
			Name:    p.Name(),
			Column:  p.ColumnName(),
			Type:    p.StorageType().String(),
			Role:    p.Role().String(),
			Ordinal: p.Ordinal(),
		}
	}
	return v
}

// HandleListEntities returns every compiled entity.
// @Summary List Entities
// @Description List every compiled entity with its columns and storage types.
// @Tags schema
// @Produce json
// @Success 200 {array} EntityView "Entities"
// @Router /schema/entities [get]
func (h *Handler) HandleListEntities(c *fiber.Ctx) error {
	models := h.service.Entities()
	out := make([]EntityView, len(models))
	for i, m := range models {
		out[i] = newEntityView(m)
	}
	return c.JSON(out)
}

// HandleGetEntity returns one compiled entity.
// @Summary Get Entity
// @Description Get one compiled entity by name, case-insensitively.
// @Tags schema
// @Produce json
// @Param name path string true "Entity name (e.g. 'users')"
// @Success 200 {object} EntityView "Entity"
// @Failure 404 {object} map[string]string "Entity Not Found"
// @Router /schema/entities/{name} [get]
func (h *Handler) HandleGetEntity(c *fiber.Ctx) error {
	m, ok := h.service.Entity(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entity not found"})
	}
	return c.JSON(newEntityView(m))
}

// HandleResolvePath resolves a dotted property path to its column names.
// @Summary Resolve Property Path
// @Description Resolve a dotted property path (e.g. 'address.city') to its column names and leaf type.
// @Tags schema
// @Produce json
// @Param name path string true "Entity name"
// @Param path path string true "Dotted property path"
// @Success 200 {object} map[string]interface{} "Resolved Path"
// @Failure 400 {object} map[string]string "Invalid Path"
// @Failure 404 {object} map[string]string "Unknown Entity Or Property"
// @Router /schema/entities/{name}/paths/{path} [get]
func (h *Handler) HandleResolvePath(c *fiber.Ctx) error {
	m, ok := h.service.Entity(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entity not found"})
	}

	path, err := h.service.ResolvePath(m, c.Params("path"))
	var unknown *selector.UnknownPropertyError
	if errors.As(err, &unknown) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"path":    path.String(),
		"columns": path.ColumnNames(),
		"type":    path.Leaf().StorageType().String(),
	})
}

// HandlePlan returns the statements Update would apply to every compiled entity.
// @Summary Plan Schema Changes
// @Description Compute the statements an update would apply, without touching the keyspace.
// @Tags schema
// @Produce json
// @Success 200 {object} map[string]interface{} "Summary And Per-Entity Results"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schema/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	results, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Schema plan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"summary": reconcile.Summarize(results),
		"results": results,
	})
}

// HandleHistory returns applied schema changes, optionally filtered by entity.
// @Summary Schema Change History
// @Description List applied schema statements, newest first.
// @Tags schema
// @Produce json
// @Param entity query string false "Only changes of this entity"
// @Param limit query int false "Maximum number of changes" default(50)
// @Success 200 {array} history.Change "Applied Changes"
// @Failure 400 {object} map[string]string "Invalid Limit"
// @Failure 503 {object} map[string]string "History Not Configured"
// @Router /schema/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
	}

	changes, err := h.service.History(c.Context(), c.Query("entity"), limit)
	if err != nil {
		return h.fail(c, "History lookup failed", err)
	}
	return c.JSON(changes)
}

// HandleListScripts lists the entities with a published remediation script.
// @Summary List Remediation Scripts
// @Description List the entities that have a published remediation script.
// @Tags schema
// @Produce json
// @Success 200 {object} map[string][]string "Entities"
// @Failure 503 {object} map[string]string "Publishing Not Configured"
// @Router /schema/scripts [get]
func (h *Handler) HandleListScripts(c *fiber.Ctx) error {
	p := h.service.Publisher()
	if p == nil {
		return h.fail(c, "Script listing failed", ErrNotConfigured)
	}
	entities, err := p.List(c.Context())
	if err != nil {
		return h.fail(c, "Script listing failed", err)
	}
	return c.JSON(fiber.Map{"entities": entities})
}

// HandleGetScript returns one remediation script as text.
// @Summary Get Remediation Script
// @Description Download the published CQL script of one entity.
// @Tags schema
// @Produce plain
// @Param name path string true "Entity name"
// @Success 200 {string} string "CQL Script"
// @Failure 503 {object} map[string]string "Publishing Not Configured"
// @Router /schema/scripts/{name} [get]
func (h *Handler) HandleGetScript(c *fiber.Ctx) error {
	p := h.service.Publisher()
	if p == nil {
		return h.fail(c, "Script fetch failed", ErrNotConfigured)
	}
	body, err := p.Fetch(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, "Script fetch failed", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(body)
}

// HandleDeleteScript removes one remediation script.
// @Summary Delete Remediation Script
// @Description Remove the published CQL script of one entity.
// @Tags schema
// @Param name path string true "Entity name"
// @Success 204 "Removed"
// @Failure 503 {object} map[string]string "Publishing Not Configured"
// @Router /schema/scripts/{name} [delete]
func (h *Handler) HandleDeleteScript(c *fiber.Ctx) error {
	p := h.service.Publisher()
	if p == nil {
		return h.fail(c, "Script removal failed", ErrNotConfigured)
	}
	if err := p.Remove(c.Context(), c.Params("name")); err != nil {
		return h.fail(c, "Script removal failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
