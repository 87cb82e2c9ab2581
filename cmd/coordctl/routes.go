package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/coordkit/coordctl/internal/facade"
	"github.com/coordkit/coordctl/internal/provider"
)

func serveAdmin(addr string, f *facade.Facade) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "coordctl",
		})
	})

	router.GET("/status", func(c *gin.Context) {
		online, err := f.RegistryCenter().OnlineInstances()
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"instance":  f.RegistryCenter().InstanceID(),
			"overwrite": f.Overwrite(),
			"centers": gin.H{
				"config":   f.ConfigCenter().Name(),
				"registry": f.RegistryCenter().Name(),
				"metadata": f.MetaDataCenter().Name(),
			},
			"providers": provider.Registered(),
			"online":    online,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("addr", addr).Msg("admin server listening")
	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("admin server stopped")
	}
}
