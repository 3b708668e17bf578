// Package server exposes the notes services over a JSON REST API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/notekeeper/internal/inference"
	"github.com/at-ishikawa/notekeeper/internal/logger"
	"github.com/at-ishikawa/notekeeper/internal/notes"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

// maxUploadMemory bounds the multipart form kept in memory; larger parts spill to disk.
const maxUploadMemory = 8 << 20

// Services are the handlers' view of the application.
type Services struct {
	Records    *notes.RecordService
	Folders    *notes.FolderService
	Categories *notes.CategoryService
	Summaries  *notes.SummaryService
}

// Options configure the optional parts of the server.
type Options struct {
	AllowedOrigins []string
	// Narrator phrases rag summaries when the request asks for it.
	Narrator inference.Narrator
	Hub      *ws.Hub
	// Ready reports whether the backing stores are reachable.
	Ready  func(ctx context.Context) error
	Logger *zap.Logger
}

type Server struct {
	records    *notes.RecordService
	folders    *notes.FolderService
	categories *notes.CategoryService
	summaries  *notes.SummaryService

	allowedOrigins []string
	narrator       inference.Narrator
	hub            *ws.Hub
	ready          func(ctx context.Context) error
	logger         *zap.Logger
}

func New(services Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		records:        services.Records,
		folders:        services.Folders,
		categories:     services.Categories,
		summaries:      services.Summaries,
		allowedOrigins: opts.AllowedOrigins,
		narrator:       opts.Narrator,
		hub:            opts.Hub,
		ready:          opts.Ready,
		logger:         opts.Logger,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory
	router.Use(
		requestID(),
		logger.Recovery(s.logger),
		logger.GinMiddleware(s.logger),
		cors(s.allowedOrigins),
	)

	router.GET("/healthz", s.healthz)
	if s.hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			s.hub.ServeWS(c.Writer, c.Request)
		})
	}

	api := router.Group("/api")

	records := api.Group("/record")
	records.POST("/create-record", s.createRecord)
	records.PUT("/edit-record/:id", s.editRecord)
	records.GET("/categories", s.recordCategories)
	records.GET("/all-records", s.allRecords)
	records.GET("/day-record/:year/:month/:day", s.recordsByDay)
	records.GET("/week-record/:year/:week", s.recordsByWeek)
	records.GET("/month-record/:year/:month", s.recordsByMonth)
	records.GET("", s.listRecords)
	records.GET("/", s.listRecords)
	records.GET("/:id", s.getRecord)
	records.POST("/:id/image", s.uploadImage)
	records.DELETE("/:id", s.deleteRecord)

	folders := api.Group("/folder")
	folders.POST("/create-folder", s.createFolder)
	folders.PUT("/edit-folder/:id", s.editFolder)
	folders.POST("/add-record/:id", s.addRecordToFolder)
	folders.POST("/create-record/:id", s.createRecordInFolder)
	folders.DELETE("/remove-record/:id/:recordId", s.removeRecordFromFolder)
	folders.GET("", s.listFolders)
	folders.GET("/", s.listFolders)
	folders.GET("/:id", s.getFolder)
	folders.DELETE("/:id", s.deleteFolder)

	categories := api.Group("/category")
	categories.POST("/create", s.createCategory)
	categories.GET("", s.listCategories)
	categories.GET("/", s.listCategories)
	categories.DELETE("/:id", s.deleteCategory)

	summaries := api.Group("/summary")
	summaries.GET("/week/:year/:week", s.weeklySummary)
	summaries.GET("/month/:year/:month", s.monthlySummary)
	summaries.GET("/day/:year/:month/:day", s.dailySummary)

	ai := api.Group("/ai")
	ai.POST("/rag-summary", s.ragSummary)
	ai.POST("/summary", s.ragSummary)

	return router
}

// NewHTTPServer serves handler on addr, accepting HTTP/2 without TLS.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(c.Request.Context()); err != nil {
			logger.FromContext(c.Request.Context()).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
