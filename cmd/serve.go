package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kliff/internal/server"
	"github.com/oakwood-commons/kliff/pkg/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search pages over HTTP",
	Long: `serve exposes the search home page, the results page and a JSON API:

  GET /                 search box (?q= prefills suggestions)
  GET /results?q=&page= results page
  GET /suggest?q=       suggestion list fragment
  GET /api/suggest?q=   suggestions as JSON
  GET /api/results?q=   one results page as JSON
  GET /api/health       liveness`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		if flagChanged(cmd.Flags(), "theme") {
			st.cfg.UI.Theme.Default = st.theme
		}
		addr := st.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		resolver, err := buildResolver(st, true, "")
		if err != nil {
			return err
		}

		if st.run.MinLogLevel >= 0 {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, err := server.New(server.Options{
			Config:   st.cfg,
			Source:   st.catalog,
			Resolver: resolver,
			Logger:   *logger.ForComponent(cmd.Context(), "server"),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() { //nolint:gochecknoinits
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config server.addr)")
}
