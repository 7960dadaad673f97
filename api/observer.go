package api

import (
	"log/slog"
	"time"
)

// RequestInfo describes an outgoing request, reported just before it is sent.
type RequestInfo struct {
	ID     string
	Method string
	URL    string
}

// ResponseInfo describes the outcome of a request. Status is zero and Err is
// set when the request never produced a response.
type ResponseInfo struct {
	ID       string
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}

// Observer is notified before every request the client sends and after every
// response or transport failure. Implementations must not block.
type Observer interface {
	RequestSent(RequestInfo)
	ResponseReceived(ResponseInfo)
}

// SlogObserver logs every request/response pair through a slog.Logger.
type SlogObserver struct {
	Logger *slog.Logger
}

func (o SlogObserver) RequestSent(info RequestInfo) {
	o.Logger.Debug("starting request", "id", info.ID, "method", info.Method, "url", info.URL)
}

func (o SlogObserver) ResponseReceived(info ResponseInfo) {
	if info.Err != nil {
		o.Logger.Error("request failed",
			"id", info.ID, "method", info.Method, "url", info.URL,
			"duration", info.Duration, "error", info.Err)
		return
	}
	o.Logger.Debug("response received",
		"id", info.ID, "method", info.Method, "url", info.URL,
		"status", info.Status, "duration", info.Duration)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) RequestSent(RequestInfo)       {}
func (NopObserver) ResponseReceived(ResponseInfo) {}
