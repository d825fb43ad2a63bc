package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/tripbooking/api"
	"github.com/mkravets/tripbooking/config"
	"github.com/mkravets/tripbooking/internal/service/booking"
	"github.com/mkravets/tripbooking/internal/service/catalog"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, catalogSvc catalog.CatalogUseCase) error {
	router := gin.Default()

	bookingHandler := api.NewBookingHandler(bookingSvc)
	bookingHandler.Register(router.Group("/bookings"))

	packageHandler := api.NewPackageHandler(catalogSvc)
	packageHandler.Register(router.Group("/packages"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
