// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/mia-platform/adtport/internal/logger"
)

const (
	loggerName = "adtport:digitaltwins"

	OutgoingRequestMessage  = "outgoing request"
	RequestCompletedMessage = "request completed"
	RequestFailedMessage    = "request failed"
)

// httpLog is the shape of the http field of request log lines.
type httpLog struct {
	Request  *requestLog  `json:"request,omitempty"`
	Response *responseLog `json:"response,omitempty"`
}

type requestLog struct {
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
}

type responseLog struct {
	StatusCode int    `json:"statusCode,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

// loggingPolicy logs every request sent through the pipeline with the logger found in
// the request context.
type loggingPolicy struct{}

func (loggingPolicy) Do(req *policy.Request) (*http.Response, error) {
	raw := req.Raw()
	log := logger.FromContext(raw.Context()).WithName(loggerName)
	request := &requestLog{Method: raw.Method, Path: raw.URL.Path}
	log.Trace(OutgoingRequestMessage, "http", httpLog{Request: request}, "host", raw.URL.Host)

	start := time.Now()
	resp, err := req.Next()
	if err != nil {
		log.Debug(RequestFailedMessage, "http", httpLog{Request: request}, "error", err.Error())
		return resp, err
	}

	log.Debug(RequestCompletedMessage,
		"http", httpLog{
			Request: request,
			Response: &responseLog{
				StatusCode: resp.StatusCode,
				RequestID:  resp.Header.Get("x-ms-request-id"),
			},
		},
		"responseTime", float64(time.Since(start).Milliseconds()),
	)
	return resp, nil
}
