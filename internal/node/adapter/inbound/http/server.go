package http_handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/config"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const conflictHeader = "X-Conflict"

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.NodeService
}

// NewServer builds the client API. metrics may be nil.
func NewServer(cfg *config.Config, service port.NodeService, metrics http.Handler) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.MaxObjectSize + 64*1024, // room for multipart framing
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	// Routes
	s.registerRoutes(metrics)

	return s
}

func (s *Server) registerRoutes(metrics http.Handler) {
	s.app.Put("/object/store", s.handleStoreMultipart)
	s.app.Put("/object/:key", s.handleStoreRaw)
	s.app.Get("/object/retrieve/:key", s.handleRetrieve)
	s.app.Get("/healthCheck", s.handleHealth)
	s.app.Get("/cluster/nodes", s.handleNodes)
	if metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.HTTPAddr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

type nodeResponse struct {
	Address string `json:"address"`
	Number  int    `json:"number"`
}

type storeResponse struct {
	Message     string       `json:"message"`
	Key         string       `json:"key"`
	Coordinator nodeResponse `json:"coordinator"`
	VectorClock string       `json:"vector_clock"`
	Acks        int          `json:"acks"`
	Required    int          `json:"required"`
}

type versionResponse struct {
	Node        nodeResponse `json:"node"`
	Found       bool         `json:"found"`
	Payload     []byte       `json:"payload,omitempty"`
	VectorClock string       `json:"vector_clock"`
}

type retrieveResponse struct {
	Key      string            `json:"key"`
	Conflict bool              `json:"conflict"`
	Versions []versionResponse `json:"versions"`
	Results  []versionResponse `json:"results"`
	Repairs  []string          `json:"repairs"`
}

func (s *Server) handleStoreMultipart(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'file' part")
	}
	if fh.Size > int64(s.cfg.Server.MaxObjectSize) {
		return s.sendJSONError(c, fiber.StatusRequestEntityTooLarge, domain.ErrObjectTooLarge.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to open upload: %v", err))
	}
	defer func() { _ = f.Close() }()

	payload, err := io.ReadAll(f)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
	}

	return s.store(c, fh.Filename, payload)
}

func (s *Server) handleStoreRaw(c *fiber.Ctx) error {
	// Body is reused by fasthttp after the handler returns.
	payload := append([]byte(nil), c.Body()...)
	return s.store(c, c.Params("key"), payload)
}

func (s *Server) store(c *fiber.Ctx, key string, payload []byte) error {
	result, err := s.service.Store(c.UserContext(), key, payload)
	if err != nil {
		sdklogger.Warnw("Store failed", "key", key, "error", err.Error())
		return s.sendServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(storeResponse{
		Message: fmt.Sprintf("Write operation succeeded on node number %d with address %s",
			result.Coordinator.Number, result.Coordinator.Address),
		Key:         result.Key,
		Coordinator: nodeResponse{Address: result.Coordinator.Address, Number: result.Coordinator.Number},
		VectorClock: result.Clock.String(),
		Acks:        result.Acks,
		Required:    result.Required,
	})
}

func (s *Server) handleRetrieve(c *fiber.Ctx) error {
	key := c.Params("key")
	result, err := s.service.Retrieve(c.UserContext(), key)
	if err != nil {
		sdklogger.Warnw("Retrieve failed", "key", key, "error", err.Error())
		return s.sendServiceError(c, err)
	}

	if result.Conflict {
		c.Set(conflictHeader, "true")
	}
	return c.JSON(retrieveResponse{
		Key:      result.Key,
		Conflict: result.Conflict,
		Versions: toVersions(result.Winners),
		Results:  toVersions(result.Results),
		Repairs:  result.Repairs,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	h := s.service.Health(c.UserContext())
	status, text := fiber.StatusOK, "OK"
	if !h.RingReady {
		status, text = fiber.StatusServiceUnavailable, "RING_NOT_READY"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":     text,
		"address":    h.Address,
		"number":     h.Number,
		"ring_ready": h.RingReady,
	})
}

func (s *Server) handleNodes(c *fiber.Ctx) error {
	members := s.service.Members(c.UserContext())
	out := make([]fiber.Map, 0, len(members))
	for _, m := range members {
		out = append(out, fiber.Map{
			"address": m.Node.Address,
			"number":  m.Node.Number,
			"self":    m.Node.Self,
			"alive":   m.Alive,
			"reason":  m.Reason,
		})
	}
	return c.JSON(fiber.Map{"nodes": out})
}

func (s *Server) sendServiceError(c *fiber.Ctx, err error) error {
	var conflict *port.ConsistencyConflictError
	if errors.As(err, &conflict) {
		c.Set(conflictHeader, "true")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    err.Error(),
			"code":     codeConflict,
			"versions": toVersions(conflict.Versions),
		})
	}
	status := statusFor(err)
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"code":  errorCode(err),
	})
}

// Values of the "code" field in error bodies.
const (
	codeInvalidKey     = "INVALID_KEY"
	codeBadChecksum    = "CHECKSUM_MISMATCH"
	codeTooLarge       = "OBJECT_TOO_LARGE"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONSISTENCY_CONFLICT"
	codeRingEmpty      = "RING_EMPTY"
	codeQuorumNotMet   = "QUORUM_NOT_MET"
	codeMalformedClock = "MALFORMED_CLOCK"
	codeStorageIO      = "STORAGE_IO"
	codeTimeout        = "TIMEOUT"
	codeInternal       = "INTERNAL"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidKey):
		return codeInvalidKey
	case errors.Is(err, domain.ErrChecksumMismatch):
		return codeBadChecksum
	case errors.Is(err, domain.ErrObjectTooLarge):
		return codeTooLarge
	case errors.Is(err, port.ErrObjectNotFound):
		return codeNotFound
	case errors.Is(err, port.ErrConsistencyConflict):
		return codeConflict
	case errors.Is(err, port.ErrRingEmpty):
		return codeRingEmpty
	case errors.Is(err, port.ErrQuorumNotMet):
		return codeQuorumNotMet
	case errors.Is(err, port.ErrMalformedClock):
		return codeMalformedClock
	case errors.Is(err, port.ErrStorageIO):
		return codeStorageIO
	case errors.Is(err, context.DeadlineExceeded):
		return codeTimeout
	default:
		return codeInternal
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidKey), errors.Is(err, domain.ErrChecksumMismatch):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrObjectTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, port.ErrObjectNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, port.ErrConsistencyConflict):
		return fiber.StatusConflict
	case errors.Is(err, port.ErrRingEmpty), errors.Is(err, port.ErrQuorumNotMet):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, port.ErrMalformedClock):
		// Corrupted persisted state: not retryable.
		return fiber.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func toVersions(objs []domain.ReplicaObject) []versionResponse {
	out := make([]versionResponse, 0, len(objs))
	for _, o := range objs {
		v := versionResponse{
			Node:        nodeResponse{Address: o.Node.Address, Number: o.Node.Number},
			Found:       o.Found,
			VectorClock: o.Object.Clock.String(),
		}
		if o.Found {
			v.Payload = o.Object.Payload
		}
		out = append(out, v)
	}
	return out
}
