package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appLog "github.com/chris-regnier/daybook/internal/log"
	"github.com/chris-regnier/daybook/internal/web"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the day log, overview and calendar over HTTP",
	Long: `Starts an HTTP server exposing:

  GET /health
  GET /daylog?date=YYYY-MM-DD
  GET /overview?from=YYYY-MM-DD&to=YYYY-MM-DD
  GET /calendar.ics

The owner of each request is the basic-auth user when web.basic_auth is
configured, else the value of web.user_header, else the shared scope.`,
	Example: `  daybook serve
  daybook serve --listen :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.Web.Listen
		if serveListen != "" {
			addr = serveListen
		}

		srv := web.NewServer(svc, web.Options{
			BasicAuthUser:     appConfig.Web.BasicAuth.Username,
			BasicAuthPassword: appConfig.Web.BasicAuth.Password,
			UserHeader:        appConfig.Web.UserHeader,
			ExportPastDays:    appConfig.Web.ExportPastDays,
			ExportFutureDays:  appConfig.Web.ExportFutureDays,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appLog.Info("daybook server",
			"storage", appConfig.Storage,
			"data_dir", appConfig.DataDir,
			"timezone", svc.Location().String(),
		)
		return web.ListenAndServe(ctx, addr, srv.Handler())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from web.listen)")
	rootCmd.AddCommand(serveCmd)
}
