package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vbdreport.org/vbdreport/core"
	"vbdreport.org/vbdreport/infrastructure/devops"
	"vbdreport.org/vbdreport/security"
	"vbdreport.org/vbdreport/web/handlers"
	"vbdreport.org/vbdreport/web/middlewares"
)

func main() {
	dsn := os.Getenv("DSN")
	base64Secret := os.Getenv("VBD_SIGNING_SECRET")
	listen := os.Getenv("LISTEN")

	// Deployed instances pull config from SSM; env vars win for local runs.
	if os.Getenv("AWS_REGION") != "" {
		cfg, err := devops.LoadServerConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		if dsn == "" {
			dsn = cfg.DSN
		}
		if base64Secret == "" {
			base64Secret = cfg.SigningSecret
		}
		if listen == "" {
			listen = cfg.Listen
		}
	}
	if listen == "" {
		listen = "0.0.0.0:8090"
	}
	fmt.Printf("using DSN: %s\n", dsn)

	jwtSecret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	dm, err := core.New(dsn, 10)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		log.Fatal(err)
	}

	limiter := middlewares.NewRateLimiter(5 * time.Minute)
	defer limiter.Close()

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/ping", limiter.Middleware(middlewares.RateLimitGeneral), func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api")
	protected.Use(limiter.Middleware(middlewares.RateLimitAPI))
	protected.Use(middlewares.Authentication(jwtSecret))
	protected.Use(middlewares.RequireRole(security.RoleAdmin, security.RoleSuperAdmin))
	{
		protected.POST("/sync/patient", handlers.SyncPatientHandler(dm))
		protected.POST("/sync/case", handlers.SyncCaseHandler(dm))
		protected.GET("/reference-data", handlers.ReferenceDataHandler(dm))

		protected.GET("/whoami", func(c *gin.Context) {
			claims, _ := c.Get("claims")
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	}

	r.Run(listen)
}
