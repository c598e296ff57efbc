// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/mia-platform/adtport/internal/info"
)

const (
	// APIVersion is the data plane API version used by the client.
	APIVersion = "2023-10-31"
	// Scope is the token scope for the Azure Digital Twins data plane.
	Scope = "https://digitaltwins.azure.net/.default"

	// AllTwinsQuery selects every twin of an instance.
	AllTwinsQuery = "SELECT * FROM digitaltwins"
	// AllRelationshipsQuery selects every relationship of an instance.
	AllRelationshipsQuery = "SELECT * FROM relationships"

	moduleName = "digitaltwins"

	apiVersionParam       = "api-version"
	maxItemsPerPageHeader = "max-items-per-page"
	queryChargeHeader     = "query-charge"
)

// ClientOptions contains the optional parameters for NewClient.
type ClientOptions struct {
	azcore.ClientOptions
}

// Client is a data plane client for a single Azure Digital Twins instance.
type Client struct {
	endpoint string
	pl       runtime.Pipeline
}

// NewClient creates a client for the instance at endpoint. The endpoint can be a full
// https URL or a bare host name.
func NewClient(endpoint string, credential azcore.TokenCredential, options *ClientOptions) (*Client, error) {
	if credential == nil {
		return nil, handleError(fmt.Errorf("%w: credential", ErrMissingParameter))
	}

	normalized, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, handleError(err)
	}

	if options == nil {
		options = &ClientOptions{}
	}

	clientOptions := options.ClientOptions
	if clientOptions.Telemetry.ApplicationID == "" {
		clientOptions.Telemetry.ApplicationID = info.UserAgent()
	}

	authPolicy := runtime.NewBearerTokenPolicy(credential, []string{Scope}, nil)
	return &Client{
		endpoint: normalized,
		pl: runtime.NewPipeline(moduleName, info.Version, runtime.PipelineOptions{
			PerCall:  []policy.Policy{loggingPolicy{}},
			PerRetry: []policy.Policy{authPolicy},
		}, &clientOptions),
	}, nil
}

// Endpoint returns the normalized instance endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// normalizeEndpoint adds the https scheme when missing and strips any path from endpoint.
func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("%w: empty endpoint", ErrInvalidEndpoint)
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: %q must use https", ErrInvalidEndpoint, endpoint)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}

	return parsed.Scheme + "://" + parsed.Host, nil
}

// NewListModelsPager returns a pager over the models of the instance, following the nextLink
// returned by the service.
func (c *Client) NewListModelsPager(options *ListModelsOptions) *runtime.Pager[ListModelsResponse] {
	return runtime.NewPager(runtime.PagingHandler[ListModelsResponse]{
		More: func(page ListModelsResponse) bool {
			return page.NextLink != nil && len(*page.NextLink) > 0
		},
		Fetcher: func(ctx context.Context, page *ListModelsResponse) (ListModelsResponse, error) {
			var req *policy.Request
			var err error
			if page == nil {
				req, err = c.listModelsCreateRequest(ctx, options)
			} else {
				req, err = c.nextLinkRequest(ctx, *page.NextLink, options)
			}
			if err != nil {
				return ListModelsResponse{}, handleError(err)
			}

			resp, err := c.pl.Do(req)
			if err != nil {
				return ListModelsResponse{}, handleError(err)
			}

			if !runtime.HasStatusCode(resp, http.StatusOK) {
				return ListModelsResponse{}, newServiceError(resp)
			}

			result := ListModelsResponse{}
			if err := runtime.UnmarshalAsJSON(resp, &result.PagedModelDataCollection); err != nil {
				return ListModelsResponse{}, handleError(err)
			}

			return result, nil
		},
	})
}

func (c *Client) listModelsCreateRequest(ctx context.Context, options *ListModelsOptions) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, runtime.JoinPaths(c.endpoint, "/models"))
	if err != nil {
		return nil, err
	}

	reqQP := req.Raw().URL.Query()
	reqQP.Set(apiVersionParam, APIVersion)
	if options != nil {
		for _, dependency := range options.DependenciesFor {
			reqQP.Add("dependenciesFor", dependency)
		}
		if options.IncludeModelDefinition {
			reqQP.Set("includeModelDefinition", "true")
		}
		setMaxItemsPerPage(req, options.MaxItemsPerPage)
	}

	req.Raw().URL.RawQuery = reqQP.Encode()
	req.Raw().Header["Accept"] = []string{"application/json"}
	return req, nil
}

// nextLinkRequest builds the request for a page following the first one.
func (c *Client) nextLinkRequest(ctx context.Context, nextLink string, options *ListModelsOptions) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, nextLink)
	if err != nil {
		return nil, err
	}

	reqQP := req.Raw().URL.Query()
	if reqQP.Get(apiVersionParam) == "" {
		reqQP.Set(apiVersionParam, APIVersion)
		req.Raw().URL.RawQuery = reqQP.Encode()
	}

	if options != nil {
		setMaxItemsPerPage(req, options.MaxItemsPerPage)
	}

	req.Raw().Header["Accept"] = []string{"application/json"}
	return req, nil
}

// NewQueryPager returns a pager over the results of query, following the continuation
// token returned by the service.
func (c *Client) NewQueryPager(query string, options *QueryOptions) *runtime.Pager[QueryResponse] {
	return runtime.NewPager(runtime.PagingHandler[QueryResponse]{
		More: func(page QueryResponse) bool {
			return page.ContinuationToken != nil && len(*page.ContinuationToken) > 0
		},
		Fetcher: func(ctx context.Context, page *QueryResponse) (QueryResponse, error) {
			specification := QuerySpecification{Query: query}
			if page != nil {
				// continuation requests carry only the token
				specification = QuerySpecification{ContinuationToken: page.ContinuationToken}
			}

			req, err := c.queryCreateRequest(ctx, specification, options)
			if err != nil {
				return QueryResponse{}, handleError(err)
			}

			resp, err := c.pl.Do(req)
			if err != nil {
				return QueryResponse{}, handleError(err)
			}

			if !runtime.HasStatusCode(resp, http.StatusOK) {
				return QueryResponse{}, newServiceError(resp)
			}

			result := QueryResponse{}
			if charge := resp.Header.Get(queryChargeHeader); charge != "" {
				if value, err := strconv.ParseFloat(charge, 64); err == nil {
					result.QueryCharge = &value
				}
			}

			if err := runtime.UnmarshalAsJSON(resp, &result.QueryResult); err != nil {
				return QueryResponse{}, handleError(err)
			}

			return result, nil
		},
	})
}

func (c *Client) queryCreateRequest(ctx context.Context, specification QuerySpecification, options *QueryOptions) (*policy.Request, error) {
	if specification.Query == "" && specification.ContinuationToken == nil {
		return nil, fmt.Errorf("%w: query", ErrMissingParameter)
	}

	req, err := runtime.NewRequest(ctx, http.MethodPost, runtime.JoinPaths(c.endpoint, "/query"))
	if err != nil {
		return nil, err
	}

	setAPIVersion(req)
	if options != nil {
		setMaxItemsPerPage(req, options.MaxItemsPerPage)
	}

	req.Raw().Header["Accept"] = []string{"application/json"}
	if err := runtime.MarshalAsJSON(req, specification); err != nil {
		return nil, err
	}

	return req, nil
}

// CreateModels uploads models in a single batch. The service resolves the references
// between the models of the batch.
func (c *Client) CreateModels(ctx context.Context, models []Model, _ *CreateModelsOptions) (CreateModelsResponse, error) {
	req, err := runtime.NewRequest(ctx, http.MethodPost, runtime.JoinPaths(c.endpoint, "/models"))
	if err != nil {
		return CreateModelsResponse{}, handleError(err)
	}

	setAPIVersion(req)
	req.Raw().Header["Accept"] = []string{"application/json"}
	if models == nil {
		models = []Model{}
	}

	if err := runtime.MarshalAsJSON(req, models); err != nil {
		return CreateModelsResponse{}, handleError(err)
	}

	resp, err := c.pl.Do(req)
	if err != nil {
		return CreateModelsResponse{}, handleError(err)
	}

	if !runtime.HasStatusCode(resp, http.StatusCreated) {
		return CreateModelsResponse{}, newServiceError(resp)
	}

	result := CreateModelsResponse{}
	if err := runtime.UnmarshalAsJSON(resp, &result.Value); err != nil {
		return CreateModelsResponse{}, handleError(err)
	}

	return result, nil
}

// UpsertDigitalTwin creates or replaces the twin with the given id.
func (c *Client) UpsertDigitalTwin(ctx context.Context, id string, twin Twin, options *UpsertDigitalTwinOptions) (UpsertDigitalTwinResponse, error) {
	if id == "" {
		return UpsertDigitalTwinResponse{}, handleError(fmt.Errorf("%w: twin id", ErrMissingParameter))
	}

	urlPath := "/digitaltwins/" + url.PathEscape(id)
	req, err := runtime.NewRequest(ctx, http.MethodPut, runtime.JoinPaths(c.endpoint, urlPath))
	if err != nil {
		return UpsertDigitalTwinResponse{}, handleError(err)
	}

	setAPIVersion(req)
	req.Raw().Header["Accept"] = []string{"application/json"}
	if options != nil && options.IfNoneMatch != nil {
		req.Raw().Header["If-None-Match"] = []string{*options.IfNoneMatch}
	}

	if err := runtime.MarshalAsJSON(req, twin); err != nil {
		return UpsertDigitalTwinResponse{}, handleError(err)
	}

	resp, err := c.pl.Do(req)
	if err != nil {
		return UpsertDigitalTwinResponse{}, handleError(err)
	}

	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated) {
		return UpsertDigitalTwinResponse{}, newServiceError(resp)
	}

	result := UpsertDigitalTwinResponse{}
	if etag := resp.Header.Get("ETag"); etag != "" {
		result.ETag = &etag
	}

	if err := runtime.UnmarshalAsJSON(resp, &result.Twin); err != nil {
		return UpsertDigitalTwinResponse{}, handleError(err)
	}

	return result, nil
}

// UpsertRelationship creates or replaces the relationship relationshipID outgoing from the
// twin sourceID.
func (c *Client) UpsertRelationship(ctx context.Context, sourceID, relationshipID string, relationship Relationship, options *UpsertRelationshipOptions) (UpsertRelationshipResponse, error) {
	if sourceID == "" {
		return UpsertRelationshipResponse{}, handleError(fmt.Errorf("%w: source twin id", ErrMissingParameter))
	}
	if relationshipID == "" {
		return UpsertRelationshipResponse{}, handleError(fmt.Errorf("%w: relationship id", ErrMissingParameter))
	}

	urlPath := "/digitaltwins/" + url.PathEscape(sourceID) + "/relationships/" + url.PathEscape(relationshipID)
	req, err := runtime.NewRequest(ctx, http.MethodPut, runtime.JoinPaths(c.endpoint, urlPath))
	if err != nil {
		return UpsertRelationshipResponse{}, handleError(err)
	}

	setAPIVersion(req)
	req.Raw().Header["Accept"] = []string{"application/json"}
	if options != nil && options.IfNoneMatch != nil {
		req.Raw().Header["If-None-Match"] = []string{*options.IfNoneMatch}
	}

	if err := runtime.MarshalAsJSON(req, relationship); err != nil {
		return UpsertRelationshipResponse{}, handleError(err)
	}

	resp, err := c.pl.Do(req)
	if err != nil {
		return UpsertRelationshipResponse{}, handleError(err)
	}

	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated) {
		return UpsertRelationshipResponse{}, newServiceError(resp)
	}

	result := UpsertRelationshipResponse{}
	if etag := resp.Header.Get("ETag"); etag != "" {
		result.ETag = &etag
	}

	if err := runtime.UnmarshalAsJSON(resp, &result.Relationship); err != nil {
		return UpsertRelationshipResponse{}, handleError(err)
	}

	return result, nil
}

func setAPIVersion(req *policy.Request) {
	reqQP := req.Raw().URL.Query()
	reqQP.Set(apiVersionParam, APIVersion)
	req.Raw().URL.RawQuery = reqQP.Encode()
}

func setMaxItemsPerPage(req *policy.Request, maxItems *int32) {
	if maxItems != nil {
		req.Raw().Header[maxItemsPerPageHeader] = []string{strconv.FormatInt(int64(*maxItems), 10)}
	}
}
