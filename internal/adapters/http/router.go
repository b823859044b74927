// Package http exposes a small read-only admin surface next to the chat
// protocol: liveness and the live room catalog.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/config"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/core"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

type roomView struct {
	Name        domain.RoomName `json:"name"`
	Private     bool            `json:"private"`
	MemberCount int             `json:"member_count"`
}

func SetupRouter(cfg *config.Config, store core.Store, registry *core.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		rooms, err := store.ListRooms(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "room list unavailable"})
			return
		}

		counts := make(map[domain.RoomName]int)
		for _, info := range registry.Rooms() {
			counts[info.Name] = info.MemberCount
		}

		out := make([]roomView, 0, len(rooms))
		for _, room := range rooms {
			out = append(out, roomView{
				Name:        room.Name,
				Private:     room.Private,
				MemberCount: counts[room.Name],
			})
		}
		c.JSON(http.StatusOK, out)
	})

	return r
}
