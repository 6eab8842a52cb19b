package middleware

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest transparently decodes gzip or deflate request bodies. Other
// encodings are rejected with 415.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
		if encoding == "" || encoding == "identity" {
			c.Next()
			return
		}

		originalBody := c.Request.Body
		var reader io.ReadCloser
		switch encoding {
		case "gzip", "x-gzip":
			gz, err := gzip.NewReader(originalBody)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			reader = gz
		case "deflate":
			reader = flate.NewReader(originalBody)
		default:
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
			return
		}
		defer reader.Close()
		defer originalBody.Close()

		c.Request.Body = reader
		c.Request.ContentLength = -1
		c.Request.Header.Del("Content-Encoding")
		c.Request.Header.Del("Content-Length")
		c.Next()
	}
}
