// Package http wires the gin engine: middleware, routes and the JSON
// envelope every endpoint answers with.
package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"gorm.io/gorm"

	"contact-book-go/internal/config"
	"contact-book-go/internal/service"
)

type Server struct {
	cfg       *config.Config
	users     *service.UserService
	groups    *service.GroupService
	contacts  *service.ContactService
	validator *gojsonschema.Schema
}

func NewServer(cfg *config.Config, db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging())

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(contactRecordsSchema))
	if err != nil {
		panic(err)
	}

	s := &Server{
		cfg:       cfg,
		users:     service.NewUserService(db),
		groups:    service.NewGroupService(db),
		contacts:  service.NewContactService(db),
		validator: schema,
	}

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authorized := api.Group("")
	authorized.Use(Identity(cfg))
	{
		authorized.GET("/contacts", s.listContacts)
		authorized.POST("/contacts", s.addContact)
		authorized.PUT("/contacts", s.updateContact)
		authorized.DELETE("/contacts", s.deleteContact)
		authorized.POST("/contacts/batch", s.batchAddContacts)
		authorized.GET("/contacts/export", s.exportCSV)
		authorized.GET("/contacts/export/excel", s.exportExcel)
		authorized.POST("/contacts/import/excel", s.importExcel)
		authorized.PUT("/contacts/favorite/:id", s.toggleFavorite)

		authorized.GET("/groups", s.listGroups)
		authorized.POST("/groups", s.createGroup)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "success", "message": "后端服务正常运行"})
}

// respond writes the {success, message, data?} envelope.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
