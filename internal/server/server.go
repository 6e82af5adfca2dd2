package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"finagent/config"
	"finagent/internal/adapter/cache"
	"finagent/internal/pipeline"
)

// Server exposes the pipeline over HTTP: one POST /chat per question,
// plus the static frontend when configured. The pipeline is shared;
// each request runs with its own state. Answers are cached by question
// so repeated questions skip the pipeline entirely.
type Server struct {
	engine   *gin.Engine
	pipeline *pipeline.Pipeline
	answers  *cache.AnswerCache
	addr     string
}

type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func New(p *pipeline.Pipeline, cfg config.ServerConfig) *Server {
	engine := gin.Default()

	s := &Server{
		engine:   engine,
		pipeline: p,
		addr:     cfg.Addr,
	}
	if cfg.CacheSize > 0 {
		s.answers = cache.NewAnswerCache(cfg.CacheSize, cfg.CacheTTL())
	}

	engine.POST("/chat", s.handleChat)

	if cfg.StaticDir != "" {
		engine.Static("/static", cfg.StaticDir)
		engine.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.StaticDir, "index.html"))
		})
	}

	return s
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.answers != nil {
		if answer, hit := s.answers.Get(req.Question); hit {
			c.JSON(http.StatusOK, chatResponse{Answer: answer})
			return
		}
	}

	state, err := s.pipeline.Run(c.Request.Context(), req.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.answers != nil {
		s.answers.Put(req.Question, state.Generation)
	}

	c.JSON(http.StatusOK, chatResponse{Answer: state.Generation})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}
