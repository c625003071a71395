// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// logger is a Gin handler to log requests for debugging, and record request durations.
func (a *API) logger(c *gin.Context) {
	start := time.Now()
	if !log.V(2).Enabled() {
		c.Next()
		a.observe(c, start)
		return
	}
	log := log // Local variable, can assign without changing global log.
	log = log.WithValues(
		"method", c.Request.Method,
		"url", c.Request.URL.String(),
		"from", c.Request.RemoteAddr,
	)
	log.V(4).Info("Request received", "body", copyBody(c.Request))
	// Wrap the ResponseWriter to capture the response
	rw := &responseWriter{ResponseWriter: c.Writer}
	c.Writer = rw

	defer func() {
		latency := a.observe(c, start)
		status := c.Writer.Status()
		log = log.WithValues("code", status, "text", http.StatusText(status), "latency", latency)
		if len(c.Errors.Errors()) > 0 {
			log = log.WithValues("errors", c.Errors.Errors())
		}
		if log.V(5).Enabled() { // Response is big, trace at per-object level.
			log = log.WithValues("response", rw.body.String())
		}
		if c.IsAborted() || c.Writer.Status()/100 != 2 {
			log.V(2).Info("Request failed")
		} else {
			log.V(3).Info("Request succeeded")
		}
	}()
	c.Next()
}

func (a *API) observe(c *gin.Context, start time.Time) time.Duration {
	latency := time.Since(start)
	a.metrics.requests.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Observe(latency.Seconds())
	return latency
}

// copyBody returns the request body and replaces it with an unread copy.
func copyBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	return string(b)
}

// responseWriter keeps a copy of the response body.
type responseWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
