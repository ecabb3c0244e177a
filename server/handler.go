package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/flake/snowflake"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/xerrors"
)

// SnowflakeResponse 生成结果
type SnowflakeResponse struct {
	Snowflake string `json:"snowflake" msgpack:"snowflake"`
}

// TransportResponse 编码结果
type TransportResponse struct {
	Snowflake string `json:"snowflake" msgpack:"snowflake"`
	Transport string `json:"transport" msgpack:"transport"`
}

// HealthResponse 存活检查结果
type HealthResponse struct {
	Status string `json:"status" msgpack:"status"`
}

func (s *Server) registerRoutes(r gin.IRouter) {
	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.POST("/snowflakes", s.generate)
	v1.GET("/snowflakes/:id", s.deconstruct)
	v1.GET("/snowflakes/:id/transport", s.encode)
	v1.GET("/transport", s.decode)
}

func (s *Server) health(c *gin.Context) {
	render(c, http.StatusOK, HealthResponse{Status: "ok"})
}

// generate POST /v1/snowflakes[?timestamp=<ms>]
func (s *Server) generate(c *gin.Context) {
	var (
		id  string
		err error
	)
	if raw, ok := c.GetQuery("timestamp"); ok {
		ms, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			err = xerrors.WithCode(xerrors.Wrapf(snowflake.ErrInvalidTimestamp, "timestamp %q", raw), "not_a_number")
		} else {
			id, err = s.gen.GenerateMillis(ms)
		}
	} else {
		id, err = s.gen.Generate()
	}
	if err != nil {
		renderError(c, err)
		return
	}
	trace.Annotate(c.Request.Context(), trace.AttrSnowflake.String(id))
	render(c, http.StatusCreated, SnowflakeResponse{Snowflake: id})
}

// deconstruct GET /v1/snowflakes/:id
func (s *Server) deconstruct(c *gin.Context) {
	d, err := s.gen.Deconstruct(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	trace.Annotate(c.Request.Context(), trace.AttrSnowflake.String(d.Snowflake))
	render(c, http.StatusOK, d)
}

// encode GET /v1/snowflakes/:id/transport
func (s *Server) encode(c *gin.Context) {
	id := c.Param("id")
	token, err := s.codec.Encode(id)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, TransportResponse{Snowflake: id, Transport: token})
}

// decode GET /v1/transport?token=<t>
func (s *Server) decode(c *gin.Context) {
	d, err := s.codec.Decode(c.Query("token"))
	if err != nil {
		renderError(c, err)
		return
	}
	trace.Annotate(c.Request.Context(), trace.AttrSnowflake.String(d.Snowflake))
	render(c, http.StatusOK, d)
}
