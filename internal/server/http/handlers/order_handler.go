package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/server/http/dto"
	"github.com/HannahHaeusler/labor/internal/usecase"
)

const ownerIDParam = "ownerId"

// OrderHandler manages order endpoints.
type OrderHandler struct {
	facade  OrderFacade
	baseURI string
	logger  *slog.Logger
}

// NewOrderHandler constructs OrderHandler. An empty baseURI derives Location headers
// from the incoming request.
func NewOrderHandler(facade OrderFacade, baseURI string, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, baseURI: strings.TrimRight(baseURI, "/"), logger: logger}
}

// Get handles GET /api/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	order, found, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get order", err, slog.String("order_id", id.String()))
		return
	}
	if !found {
		c.Status(http.StatusNotFound)
		return
	}

	version := order.CurrentVersion()
	c.Header("ETag", etag(version))
	if matchesVersion(c.GetHeader("If-None-Match"), version) {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(*order))
}

// List handles GET /api and GET /api?ownerId=...
func (h *OrderHandler) List(c *gin.Context) {
	query := c.Request.URL.Query()

	var (
		orders []model.Order
		err    error
	)
	switch {
	case len(query) == 0:
		orders, err = h.facade.Orders(c.Request.Context())
	case len(query) == 1 && len(query[ownerIDParam]) == 1:
		ownerID := query.Get(ownerIDParam)
		orders, err = h.facade.OrdersByOwner(c.Request.Context(), ownerID)
		if err != nil {
			h.fail(c, "find orders by owner", err, slog.String("owner_id", ownerID))
			return
		}
	default:
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.FromOrder(o))
	}
	c.JSON(http.StatusOK, response)
}

// Create handles POST /api.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.facade.CreateOrder(c.Request.Context(), req.ToOrder())
	if err != nil {
		h.fail(c, "create order", err, slog.String("owner_id", req.OwnerID))
		return
	}

	switch r := result.(type) {
	case usecase.Created:
		c.Header("Location", h.location(c, r.Order.ID))
		c.Header("ETag", etag(r.Order.CurrentVersion()))
		c.Status(http.StatusCreated)
	case usecase.ConstraintViolations:
		c.JSON(http.StatusBadRequest, dto.FromViolations(r.Violations))
	default:
		h.fail(c, "create order", errors.New("unexpected create result"))
	}
}

// fail logs err once, at warn for client-side statuses and error otherwise, and
// writes the status it maps to.
func (h *OrderHandler) fail(c *gin.Context, op string, err error, attrs ...any) {
	status := statusFor(err)
	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	args := append([]any{
		slog.String("op", op),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}, attrs...)
	h.logger.Log(c.Request.Context(), level, "order request failed", args...)
	_ = c.Error(err)
	c.Status(status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrOwnerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *OrderHandler) location(c *gin.Context, id uuid.UUID) string {
	base := h.baseURI
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host + strings.TrimRight(c.Request.URL.Path, "/")
	}
	return base + "/" + id.String()
}

func etag(version int) string {
	return strconv.Quote(strconv.Itoa(version))
}

// matchesVersion reports whether an If-None-Match header names version. Weak and
// unquoted tags are accepted, as is "*".
func matchesVersion(header string, version int) bool {
	if header == "" {
		return false
	}
	want := strconv.Itoa(version)
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		tag = strings.TrimPrefix(tag, "W/")
		tag = strings.Trim(tag, `"`)
		if tag == want {
			return true
		}
	}
	return false
}
