// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

var (
	// ErrDigitalTwins is the sentinel error for all Azure Digital Twins client errors.
	ErrDigitalTwins = errors.New("digital twins")
	// ErrInvalidEndpoint reports a malformed instance endpoint.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrInvalidRecord reports a twin, relationship or model that cannot be decoded.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrMissingParameter reports an empty identifier passed to an operation.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrUnsupportedCredential reports an unknown credential kind.
	ErrUnsupportedCredential = errors.New("unsupported credential")
)

// ServiceError is returned when the service answers with an unexpected status code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string

	err error
}

// newServiceError builds a ServiceError from the service response, reading the
// error code and message from the standard Azure error body when available.
func newServiceError(resp *http.Response) error {
	respErr := runtime.NewResponseError(resp)
	serviceErr := &ServiceError{
		StatusCode: resp.StatusCode,
		err:        respErr,
	}

	var azureErr *azcore.ResponseError
	if errors.As(respErr, &azureErr) {
		serviceErr.Code = azureErr.ErrorCode
	}

	if payload, err := runtime.Payload(resp); err == nil && len(payload) > 0 {
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(payload, &body); err == nil {
			if body.Error.Code != "" {
				serviceErr.Code = body.Error.Code
			}
			serviceErr.Message = body.Error.Message
		}
	}

	if serviceErr.Message == "" {
		serviceErr.Message = http.StatusText(resp.StatusCode)
	}

	return serviceErr
}

func (e *ServiceError) Error() string {
	prefix := ErrDigitalTwins.Error() + ": " + strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		prefix += " " + e.Code
	}

	return prefix + ": " + e.Message
}

// Unwrap exposes both the package sentinel and the underlying *azcore.ResponseError.
func (e *ServiceError) Unwrap() []error {
	return []error{ErrDigitalTwins, e.err}
}

// ErrorMessage returns the human readable message reported by the service for err,
// or the error string when err does not come from the service.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}

	return err.Error()
}

// handleError wraps err with ErrDigitalTwins when it is not already part of its chain.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDigitalTwins) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrDigitalTwins, err)
}
