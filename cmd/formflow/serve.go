package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/acopio/formflow"
	"github.com/acopio/formflow/internal/cli"
	httpAdapter "github.com/acopio/formflow/pkg/adapters/http"
	"github.com/acopio/formflow/pkg/adapters/memory"
	redisAdapter "github.com/acopio/formflow/pkg/adapters/redis"
	"github.com/acopio/formflow/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the formflow engine in server mode, exposing schema persistence, flow rendering and registration intake over JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		schemas, _ := cmd.Flags().GetStringArray("schema")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := cli.CreateLogger(debug)

		var store ports.SchemaStore
		var locker ports.DistributedLocker
		if redisAddr != "" {
			client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
			store = redisAdapter.NewFromClient(client)
			locker = redisAdapter.NewLocker(client, "formflow:lock:")
		} else {
			store = memory.NewStore()
		}

		opts := []formflow.Option{
			formflow.WithLogger(logger),
			formflow.WithSchemaStore(store),
			formflow.WithRegistrationSink(memory.NewLedger()),
		}
		if locker != nil {
			opts = append(opts, formflow.WithLocker(locker))
		}

		engine, err := formflow.New(opts...)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		// Preload schemas given as form=path pairs (or bare paths, keyed
		// by the file name without extension).
		for _, entry := range schemas {
			formID, path, ok := strings.Cut(entry, "=")
			if !ok {
				path = entry
				formID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			doc, err := cli.LoadDocument(path)
			if err != nil {
				fmt.Printf("Error loading schema %s: %v\n", path, err)
				os.Exit(1)
			}
			if _, err := engine.PersistSchema(cmd.Context(), formID, doc); err != nil {
				fmt.Printf("Error storing schema %s: %v\n", formID, err)
				os.Exit(1)
			}
			fmt.Printf("Loaded schema %q from %s\n", formID, path)
		}

		handler, err := httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Formflow Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				fmt.Printf("Could not stop server gracefully: %v\n", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for schema storage and locking (empty uses in-memory)")
	serveCmd.Flags().StringArray("schema", nil, "Schema to preload as form=path, may repeat")
	rootCmd.AddCommand(serveCmd)
}
