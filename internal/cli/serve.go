package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-session/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the OCR session over MCP on stdin/stdout or HTTP",
		Long: `Serve the OCR session over MCP (JSON-RPC 2.0, one message per line) on
stdin/stdout. This is also what runs when no subcommand is given.

Configure it in your MCP client (e.g., Claude Desktop) as a stdio server.

With --http the same methods are served as POST /mcp on the given address,
along with GET /state and GET /healthz. --jwt-secret requires an HS256
bearer token on every route except /healthz.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().StringVar(&a.flags.httpAddr, "http", "", "listen for MCP over HTTP on this address, e.g. :8080")
	cmd.Flags().StringVar(&a.flags.jwtSecret, "jwt-secret", "", "HS256 secret for bearer-token auth over HTTP")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	sess, err := a.newSession()
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Terminate(context.Background()); err != nil {
			log.Printf("Failed to terminate OCR worker: %v", err)
		}
	}()

	srv := server.New(sess, a.cfg.TessdataPrefix, a.info.Version)

	if a.cfg.HTTPAddr != "" {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		opts := server.HTTPOptions{}
		if a.cfg.JWTSecret != "" {
			opts.JWTSecret = []byte(a.cfg.JWTSecret)
		}
		if err := srv.ListenHTTP(ctx, a.cfg.HTTPAddr, opts); err != nil {
			log.Printf("Server error: %v", err)
			return err
		}
		return nil
	}

	if err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		log.Printf("Server error: %v", err)
		return err
	}
	return nil
}
