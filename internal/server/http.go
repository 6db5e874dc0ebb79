package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	// JWTSecret, when set, requires an HS256-signed bearer token on every
	// route except /healthz.
	JWTSecret []byte
}

// HTTPApp returns a Fiber app serving the session over HTTP:
//
//	POST /mcp      one JSON-RPC request per call, same methods as stdio
//	GET  /state    the current session.State
//	GET  /healthz  liveness probe, never authenticated
//
// State notifications are only available over stdio; HTTP clients poll
// /state instead.
func (s *Server) HTTPApp(opts HTTPOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Base64 images can be large
		BodyLimit: 64 << 20,
	})

	auth := requireToken(opts.JWTSecret)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/state", auth, func(c *fiber.Ctx) error {
		return c.JSON(s.sess.Snapshot())
	})
	app.Post("/mcp", auth, s.handleHTTPRequest)

	return app
}

// ListenHTTP serves HTTPApp on addr until ctx is cancelled.
func (s *Server) ListenHTTP(ctx context.Context, addr string, opts HTTPOptions) error {
	app := s.HTTPApp(opts)

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(addr)
	}()
	log.Printf("Listening for MCP over HTTP on %s", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return <-errc
	}
}

func (s *Server) handleHTTPRequest(c *fiber.Ctx) error {
	var req MCPRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(&MCPResponse{
			JSONRPC: "2.0",
			Error: &MCPError{
				Code:    -32700,
				Message: "Parse error",
				Data:    err.Error(),
			},
		})
	}

	resp := s.handleRequest(c.UserContext(), &req)
	if resp == nil {
		return c.SendStatus(fiber.StatusAccepted)
	}
	return c.JSON(resp)
}

// requireToken rejects requests without a valid HS256 bearer token. An
// empty secret disables the check.
func requireToken(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
			func(t *jwt.Token) (interface{}, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token: " + err.Error()})
		}
		return c.Next()
	}
}
