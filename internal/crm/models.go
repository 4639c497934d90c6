package crm

import "time"

// LastModifiedProperty is the record property the watermark filter and sort
// are applied to.
const LastModifiedProperty = "last_modified"

// Filter is one equality or range condition on a record property
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// FilterGroup is a conjunction of filters
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// Sort orders search results by a property
type Sort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// SearchRequest is the body of a record search call
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

// searchRecord is the wire shape of one record; property values may be null
type searchRecord struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Properties map[string]*string `json:"properties"`
}

// PagingNext carries the cursor for the next page
type PagingNext struct {
	After string `json:"after"`
}

// Paging is present when more pages remain
type Paging struct {
	Next *PagingNext `json:"next,omitempty"`
}

// SearchResponse is one page of search results
type SearchResponse struct {
	Results []searchRecord `json:"results"`
	Paging  *Paging        `json:"paging,omitempty"`
}

// NextCursor returns the cursor for the next page, empty when exhausted
func (r *SearchResponse) NextCursor() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

type assocRef struct {
	ID string `json:"id"`
}

type association struct {
	From *assocRef  `json:"from"`
	To   []assocRef `json:"to"`
}

type associationBatchRequest struct {
	Inputs []assocRef `json:"inputs"`
}

type associationBatchResponse struct {
	Results []association `json:"results"`
}

type batchReadRequest struct {
	Properties []string   `json:"properties,omitempty"`
	Inputs     []assocRef `json:"inputs"`
}

type batchReadResponse struct {
	Results []searchRecord `json:"results"`
}

type meetingAssociationsResponse struct {
	Results []struct {
		ToObjectID string `json:"toObjectId"`
	} `json:"results"`
}
