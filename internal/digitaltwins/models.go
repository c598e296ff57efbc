// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"encoding/json"
	"time"
)

const (
	// ModelIDKey is the DTDL key holding the model identifier.
	ModelIDKey = "@id"
	// TwinIDKey is the reserved key holding the twin identifier.
	TwinIDKey = "$dtId"
	// SourceIDKey is the reserved key holding the relationship source twin identifier.
	SourceIDKey = "$sourceId"
	// TargetIDKey is the reserved key holding the relationship target twin identifier.
	TargetIDKey = "$targetId"
	// RelationshipIDKey is the reserved key holding the relationship identifier.
	RelationshipIDKey = "$relationshipId"
	// RelationshipNameKey is the reserved key holding the relationship name defined in the model.
	RelationshipNameKey = "$relationshipName"
)

// Model is a DTDL model definition document.
type Model struct {
	// ID is the DTMI of the model, stored in the "@id" key.
	ID string
	// Properties holds every other key of the definition.
	Properties map[string]any
}

// MarshalJSON implements json.Marshaler.
func (m Model) MarshalJSON() ([]byte, error) {
	return encodeRecord(m.Properties, map[string]string{ModelIDKey: m.ID})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Model) UnmarshalJSON(data []byte) error {
	var id string
	properties, err := decodeRecord(data, map[string]*string{ModelIDKey: &id})
	if err != nil {
		return err
	}

	*m = Model{ID: id, Properties: properties}
	return nil
}

// Twin is a digital twin instance.
type Twin struct {
	// ID is the twin identifier, stored in the "$dtId" key.
	ID string
	// Properties holds every other key, including "$etag" and "$metadata".
	Properties map[string]any
}

// MarshalJSON implements json.Marshaler.
func (t Twin) MarshalJSON() ([]byte, error) {
	return encodeRecord(t.Properties, map[string]string{TwinIDKey: t.ID})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Twin) UnmarshalJSON(data []byte) error {
	var id string
	properties, err := decodeRecord(data, map[string]*string{TwinIDKey: &id})
	if err != nil {
		return err
	}

	*t = Twin{ID: id, Properties: properties}
	return nil
}

// Relationship is a directed edge between two twins.
type Relationship struct {
	ID       string
	SourceID string
	TargetID string
	Name     string
	// Properties holds every non reserved key of the relationship.
	Properties map[string]any
}

// MarshalJSON implements json.Marshaler.
func (r Relationship) MarshalJSON() ([]byte, error) {
	return encodeRecord(r.Properties, map[string]string{
		RelationshipIDKey:   r.ID,
		SourceIDKey:         r.SourceID,
		TargetIDKey:         r.TargetID,
		RelationshipNameKey: r.Name,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	decoded := Relationship{}
	properties, err := decodeRecord(data, map[string]*string{
		RelationshipIDKey:   &decoded.ID,
		SourceIDKey:         &decoded.SourceID,
		TargetIDKey:         &decoded.TargetID,
		RelationshipNameKey: &decoded.Name,
	})
	if err != nil {
		return err
	}

	decoded.Properties = properties
	*r = decoded
	return nil
}

// ModelData is the envelope returned by the service when listing models.
type ModelData struct {
	ID             string            `json:"id"`
	DisplayName    map[string]string `json:"displayName,omitempty"`
	Description    map[string]string `json:"description,omitempty"`
	UploadTime     *time.Time        `json:"uploadTime,omitempty"`
	Decommissioned *bool             `json:"decommissioned,omitempty"`
	// Model is only populated when the listing is requested with the model definition.
	Model *Model `json:"model,omitempty"`
}

// PagedModelDataCollection is a single page of models.
type PagedModelDataCollection struct {
	Value    []ModelData `json:"value"`
	NextLink *string     `json:"nextLink,omitempty"`
}

// QuerySpecification is the body of a query request.
type QuerySpecification struct {
	Query             string  `json:"query,omitempty"`
	ContinuationToken *string `json:"continuationToken,omitempty"`
}

// QueryResult is a single page of query results. Items are kept raw because their shape
// depends on the query projection.
type QueryResult struct {
	Value             []json.RawMessage `json:"value"`
	ContinuationToken *string           `json:"continuationToken,omitempty"`
}

// ListModelsOptions contains the optional parameters for Client.NewListModelsPager.
type ListModelsOptions struct {
	// DependenciesFor restricts the listing to the given models and their dependencies.
	DependenciesFor []string
	// IncludeModelDefinition requests the full DTDL definition of each model.
	IncludeModelDefinition bool
	// MaxItemsPerPage is an upper bound hint for the page size.
	MaxItemsPerPage *int32
}

// ListModelsResponse contains the response from Client.NewListModelsPager.
type ListModelsResponse struct {
	PagedModelDataCollection
}

// QueryOptions contains the optional parameters for Client.NewQueryPager.
type QueryOptions struct {
	// MaxItemsPerPage is an upper bound hint for the page size.
	MaxItemsPerPage *int32
}

// QueryResponse contains the response from Client.NewQueryPager.
type QueryResponse struct {
	QueryResult
	// QueryCharge is the number of query units consumed by the page.
	QueryCharge *float64
}

// CreateModelsOptions contains the optional parameters for Client.CreateModels.
type CreateModelsOptions struct{}

// CreateModelsResponse contains the response from Client.CreateModels.
type CreateModelsResponse struct {
	Value []ModelData
}

// UpsertDigitalTwinOptions contains the optional parameters for Client.UpsertDigitalTwin.
type UpsertDigitalTwinOptions struct {
	// IfNoneMatch set to "*" makes the call fail if the twin already exists.
	IfNoneMatch *string
}

// UpsertDigitalTwinResponse contains the response from Client.UpsertDigitalTwin.
type UpsertDigitalTwinResponse struct {
	Twin
	ETag *string
}

// UpsertRelationshipOptions contains the optional parameters for Client.UpsertRelationship.
type UpsertRelationshipOptions struct {
	// IfNoneMatch set to "*" makes the call fail if the relationship already exists.
	IfNoneMatch *string
}

// UpsertRelationshipResponse contains the response from Client.UpsertRelationship.
type UpsertRelationshipResponse struct {
	Relationship
	ETag *string
}
