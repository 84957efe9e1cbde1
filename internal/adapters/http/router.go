package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/adapters/signal"
	"github.com/dkeye/Hush/internal/app"
	"github.com/dkeye/Hush/internal/config"
	"github.com/dkeye/Hush/internal/core"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type createRoomRequest struct {
	RoomName   string `json:"roomName" binding:"required,min=3,max=64"`
	Passphrase string `json:"passphrase" binding:"required,min=6,max=72"`
	CreatedBy  string `json:"createdBy" binding:"required,max=36"`
}

type verifyRequest struct {
	RoomID     string `json:"roomId" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
}

// bindError keeps the API's split between "field missing" and
// "passphrase too short" responses.
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Passphrase" && fe.Tag() == "min" {
				return fmt.Sprintf("Passphrase must be at least %d characters", core.MinPassphraseLen)
			}
			if fe.Field() == "Passphrase" && fe.Tag() == "max" {
				return fmt.Sprintf("Passphrase must be at most %d characters", core.MaxPassphraseLen)
			}
		}
	}
	return "Missing required fields"
}

func SetupRouter(ctx context.Context, cfg *config.Config, engine *app.Engine, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HushSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	api := r.Group("/api")

	api.POST("/rooms/create", func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
			return
		}
		room, serr := engine.CreateRoom(req.RoomName, req.Passphrase, req.CreatedBy)
		if serr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": serr.Message})
			return
		}
		log.Info().Str("module", "adapters.http").Str("room_id", string(room.ID)).Str("name", string(room.Name)).Msg("created room")
		c.JSON(http.StatusOK, gin.H{"roomId": room.ID, "roomName": room.Name})
	})

	api.POST("/rooms/verify", func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		valid, name, found := engine.VerifyRoom(req.RoomID, req.Passphrase)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": valid, "roomName": name})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": engine.ListRooms()})
	})

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	return r
}
