package inspect

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/msgtlv/internal/observability"
	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type encodeRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")

	v1.GET("/schema", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": s.schema.Name, "fields": s.schema.Fields})
	})

	v1.POST("/describe", func(c *gin.Context) {
		msg, ok := s.readMessage(c)
		if !ok {
			return
		}
		desc, err := schema.Describe(msg, s.schema)
		observability.RecordCodec("describe", len(desc.Fields), err)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, desc)
	})

	v1.POST("/validate", func(c *gin.Context) {
		msg, ok := s.readMessage(c)
		if !ok {
			return
		}
		err := schema.Validate(msg, s.schema)
		observability.RecordCodec("validate", 0, err)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": true})
	})

	v1.POST("/find/:type", func(c *gin.Context) {
		typ, err := strconv.ParseUint(c.Param("type"), 0, 8)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be 0..255"})
			return
		}
		msg, ok := s.readMessage(c)
		if !ok {
			return
		}
		rec, err := tlv.Find(msg, uint8(typ))
		if err != nil {
			observability.RecordCodec("find", 0, err)
			s.fail(c, err)
			return
		}
		value := make([]byte, rec.ValueLength())
		err = tlv.ReadValue(msg, rec.Offset, value)
		observability.RecordCodec("find", 1, err)
		if err != nil {
			s.fail(c, err)
			return
		}
		resp := gin.H{
			"type":     rec.Type(),
			"offset":   rec.Offset,
			"size":     rec.Size(),
			"extended": rec.Header.IsExtended(),
			"value":    hex.EncodeToString(value),
		}
		if spec, ok := s.schema.Lookup(rec.Type()); ok {
			resp["name"] = spec.Name
			resp["kind"] = spec.Kind
		}
		c.JSON(http.StatusOK, resp)
	})

	v1.POST("/encode", func(c *gin.Context) {
		var req encodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		msg := message.New()
		err := schema.Encode(msg, s.schema, req.Fields)
		observability.RecordCodec("encode", len(req.Fields), err)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", msg.Bytes())
	})
}

// readMessage loads the request body into a message, honouring an optional
// ?offset= read offset. It writes the error response itself when it fails.
func (s *Server) readMessage(c *gin.Context) (*message.Message, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, message.MaxLength+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	msg, err := message.FromBytes(body)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	if raw := c.Query("offset"); raw != "" {
		off, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return nil, false
		}
		if err := msg.SetReadOffset(off); err != nil {
			s.fail(c, err)
			return nil, false
		}
	}
	return msg, true
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": observability.ErrorKind(err)})
}

func statusFor(err error) int {
	var ve schema.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tlv.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tlv.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, message.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tlv.ErrRange), errors.Is(err, message.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
