package api

import "github.com/gin-gonic/gin"

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServiceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	api := s.router.Group("/api")
	{
		api.GET("/status", s.statusHandler.GetStatus)
		api.GET("/zones/status", s.statusHandler.GetZoneStatus)
		api.GET("/ws", gin.WrapH(s.container.Hub))

		api.GET("/config", s.configHandler.GetConfig)
		api.PUT("/config", s.configHandler.UpdateConfig)
		api.POST("/config/replace", s.configHandler.ReplaceConfig)

		monitoring := api.Group("/monitoring")
		{
			monitoring.POST("/start", s.monitoringHandler.Start)
			monitoring.POST("/stop", s.monitoringHandler.Stop)
			monitoring.POST("/restart", s.monitoringHandler.Restart)
		}

		ownership := api.Group("/ownership")
		{
			ownership.GET("", s.ownershipHandler.GetOwner)
			ownership.POST("/claim", s.ownershipHandler.Claim)
			ownership.POST("/release", s.ownershipHandler.Release)
		}

		calibration := api.Group("/calibration")
		{
			calibration.GET("", s.calibrationHandler.GetCalibration)
			calibration.GET("/profiles", s.calibrationHandler.ListProfiles)
			calibration.POST("/run", s.calibrationHandler.Run)
			calibration.PUT("/override", s.calibrationHandler.SetOverride)
			calibration.DELETE("/override", s.calibrationHandler.ClearOverride)
		}

		api.GET("/events", s.eventsHandler.ListEvents)

		captures := api.Group("/captures")
		{
			captures.GET("", s.capturesHandler.ListCaptures)
			captures.GET("/:name", s.capturesHandler.GetCapture)
			captures.DELETE("/:name", s.capturesHandler.DeleteCapture)
			captures.GET("/:name/thumbnail", s.capturesHandler.GetThumbnail)
		}

		system := api.Group("/system")
		{
			system.GET("/stats", s.systemHandler.GetStats)
		}
	}
}
