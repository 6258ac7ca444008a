package main

import (
	"github.com/spf13/cobra"
	"github.com/username/production-calendar/internal/api"
	"github.com/username/production-calendar/internal/config"
	"github.com/username/production-calendar/internal/daemon"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar over HTTP",
		Long:  "Serve read-only JSON queries over the calendar and reload it daily at server.refresh_time",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if listen == "" {
				listen = a.cfg.Server.Listen
			}

			d := daemon.NewDaemon(a.src, a.cfg.Calendar.Year, logger)

			if hour, minute, ok, _ := a.cfg.Server.GetRefreshTime(); ok {
				loc, err := a.cfg.Server.GetLocation()
				if err != nil {
					return err
				}
				d.Schedule(hour, minute, loc)
			}
			if a.repo != nil && a.cfg.Calendar.Source != config.SourceDatabase {
				d.SetStore(a.repo)
			}

			h := api.NewHandler(d, a.weekHours, logger)
			router := api.NewRouter(h, a.cfg.Server.AllowedOrigins)

			logger.Info("Starting server",
				zap.String("listen", listen),
				zap.Int("year", a.cfg.Calendar.Year),
				zap.String("source", a.cfg.Calendar.Source))

			return d.Run(listen, router)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default: server.listen)")

	return cmd
}
