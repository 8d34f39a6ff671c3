// ankistub serves the flashcard automation protocol against an in-memory
// collection, for developing and testing clients without the real
// application running.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/workingdoge/ankiconnect/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	addr := flag.String("addr", ":8765", "listen address")
	flag.Parse()

	r := newRouter(newStore(), log.Logger)
	log.Info().Str("addr", *addr).Msg("ankistub listening")
	if err := r.Run(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "ankistub: %v\n", err)
		os.Exit(1)
	}
}

func newRouter(s *store, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	// The real endpoint answers browser add-ons, so it speaks CORS.
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost", "https://localhost"},
		AllowMethods: []string{"POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.POST("/", s.handle)
	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}
