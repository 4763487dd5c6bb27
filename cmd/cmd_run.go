package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/internal/config"
	"github.com/gaze-network/drop-offerer/modules/drop"
	"github.com/gaze-network/drop-offerer/modules/drop/api/httphandler"
	"github.com/gaze-network/drop-offerer/pkg/automaxprocs"
	"github.com/gaze-network/drop-offerer/pkg/errorhandler"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gaze-network/drop-offerer/pkg/middleware/requestcontext"
	"github.com/gaze-network/drop-offerer/pkg/middleware/requestlogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Register Modules
var Modules = do.Package(
	do.Lazy(drop.New),
)

func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start drop-offerer service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := automaxprocs.Init(); err != nil {
				logger.Error("Failed to set GOMAXPROCS", slogx.Error(err))
			}
			return runHandler(cmd, args)
		},
	}

	// Add local flags
	flags := runCmd.Flags()
	flags.Int("port", 8080, "HTTP server port")
	flags.String("rpc-url", "", "EVM JSON-RPC endpoint, E.g. `https://eth.llamarpc.com`")

	// Bind flags to configuration
	config.BindPFlag("http_server.port", flags.Lookup("port"))
	config.BindPFlag("modules.drop.evm.rpc_url", flags.Lookup("rpc-url"))

	return runCmd
}

const (
	shutdownTimeout = 60 * time.Second
)

func runHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Initialize HTTP server
	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		app := fiber.New(fiber.Config{
			AppName:      "Drop Offerer",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(favicon.New()).
			Use(cors.New()).
			Use(requestid.New()).
			Use(requestcontext.New(
				requestcontext.WithRequestId(),
				requestcontext.WithClientIP(conf.HTTPServer.RequestIP),
			)).
			Use(requestlogger.New(conf.HTTPServer.Logger, httphandler.SignatureHeader)).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024) // bufLen = 1024
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", errors.Errorf("panic: %v", e), slog.String("stacktrace", string(buf)))
				},
			})).
			Use(compress.New(compress.Config{
				Level: compress.LevelDefault,
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})

		return app, nil
	})

	// Mount drop module. Routes are registered on the HTTP server while the module is initialized.
	module, err := do.Invoke[*drop.Module](injector)
	if err != nil {
		return errors.Wrap(err, "can't init drop module")
	}
	logger.InfoContext(ctx, "Drop module initialized",
		slogx.String("version", drop.Version),
		slogx.Address("self", module.Self()),
	)

	group, groupCtx := errgroup.WithContext(ctx)

	// Run API server
	httpServer := do.MustInvoke[*fiber.App](injector)
	group.Go(func() error {
		logger.InfoContext(ctx, "Started HTTP server", slog.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			return errors.Wrap(err, "error during running HTTP server")
		}
		return nil
	})

	// Stop application if HTTP server stopped or got exit signal
	group.Go(func() error {
		<-groupCtx.Done()
		stop()
		return nil
	})

	logger.InfoContext(ctx, "Drop offerer started")

	// Wait for interrupt signal to gracefully stop the server
	<-ctx.Done()
	logger.InfoContext(ctx, "Shutting down...")

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	if err := injector.Shutdown(); err != nil {
		logger.PanicContext(ctx, "Failed while gracefully shutting down", slogx.Error(err))
	}

	if err := group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Something went wrong, HTTP server stopped with error", err)
	}
	return nil
}
