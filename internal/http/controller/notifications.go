package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/middleware"
	"notify_hub/internal/http/resp"
	"notify_hub/internal/queue"
	"notify_hub/internal/service/notify"
	"notify_hub/internal/ws"
)

type Handler struct {
	cfg      *config.Config
	svc      *notify.Service
	registry *ws.Registry
	upgrader *ws.Upgrader
	log      *zap.Logger
	pub      queue.Publisher
}

func NewHandler(cfg *config.Config, svc *notify.Service, registry *ws.Registry, upgrader *ws.Upgrader, logger *zap.Logger, publisher queue.Publisher) *Handler {
	return &Handler{cfg: cfg, svc: svc, registry: registry, upgrader: upgrader, log: logger, pub: publisher}
}

// WebSocket authenticates the upgrade through the offered sub-protocol and
// keeps the connection registered until the peer goes away.
func (h *Handler) WebSocket(c *gin.Context) {
	ctx := c.Request.Context()
	conn, userID, err := h.registry.Accept(ctx, h.upgrader.Pending(c.Writer, c.Request))
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			h.log.Warn("websocket authentication failed", zap.String("client_ip", c.ClientIP()), zap.Error(err))
		} else {
			h.log.Error("websocket accept failed", zap.String("client_ip", c.ClientIP()), zap.Error(err))
		}
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", userID))
	h.registry.Serve(ctx, conn, userID)
}

func (h *Handler) ListUnread(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", h.cfg.ListLimit, 1)
	if !ok {
		return
	}
	offset, ok := h.queryInt(c, "offset", 0, 0)
	if !ok {
		return
	}

	list, err := h.svc.ListUnread(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Notifications: list, Limit: limit, Offset: offset})
}

func (h *Handler) CountUnread(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{UnreadCount: count})
}

func (h *Handler) Respond(c *gin.Context) {
	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if req.IsRead == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "is_read is required"})
		return
	}

	updated, err := h.svc.Respond(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.IsRead)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CreateNotification runs the dispatcher synchronously with the caller as
// sender.
func (h *Handler) CreateNotification(c *gin.Context) {
	req, ok := bindNotify(c)
	if !ok {
		return
	}

	stored, outcome, err := h.svc.Notify(c.Request.Context(), notify.Notice{
		UserID:     req.UserID,
		SenderID:   middleware.UserID(c),
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Message:    req.Message,
		Kind:       req.Kind,
	})
	if err != nil {
		if isInvalidNotice(err) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to create notification"})
		return
	}

	switch outcome {
	case notify.OutcomeSkipped:
		c.JSON(http.StatusOK, dto.NotifyResponse{Outcome: string(outcome)})
	case notify.OutcomeCreated:
		c.JSON(http.StatusCreated, dto.NotifyResponse{Outcome: string(outcome), Notification: &stored})
	default:
		c.JSON(http.StatusOK, dto.NotifyResponse{Outcome: string(outcome), Notification: &stored})
	}
}

// PublishNotification queues the notice on the domain-events exchange; the
// consumer feeds it to the dispatcher.
func (h *Handler) PublishNotification(c *gin.Context) {
	req, ok := bindNotify(c)
	if !ok {
		return
	}
	if !domain.IsValidObjectType(req.ObjectType) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: domain.ErrInvalidObjectType.Error()})
		return
	}
	if !domain.IsValidEventKind(req.Kind) || !domain.KindMatchesObject(req.Kind, req.ObjectType) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: domain.ErrInvalidEventKind.Error()})
		return
	}

	payload, err := json.Marshal(queue.Event{
		UserID:     req.UserID,
		SenderID:   middleware.UserID(c),
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Message:    req.Message,
		Kind:       req.Kind,
	})
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	routingKey := queue.RoutingKey(h.cfg.RabbitPublishPrefix, req.Kind)
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish notification failed",
			zap.String("user_id", req.UserID),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func bindNotify(c *gin.Context) (dto.NotifyRequest, bool) {
	var req dto.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return req, false
	}
	if req.UserID == "" || req.ObjectType == "" || req.ObjectID == "" || req.Kind == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "user_id, object_type, object_id, kind are required"})
		return req, false
	}
	return req, true
}

func isInvalidNotice(err error) bool {
	return errors.Is(err, domain.ErrInvalidObjectType) ||
		errors.Is(err, domain.ErrInvalidEventKind) ||
		errors.Is(err, domain.ErrMissingField)
}

func (h *Handler) queryInt(c *gin.Context, key string, fallback, floor int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: fmt.Sprintf("%s must be an integer >= %d", key, floor)})
		return 0, false
	}
	return n, true
}
