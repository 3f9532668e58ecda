package types

// Paging is the envelope of every collection endpoint.
type Paging[T any] struct {
	Collection   []T    `json:"collection"`
	NextHref     string `json:"next_href"`
	QueryURN     string `json:"query_urn"`
	TotalResults *int64 `json:"total_results"`
}

func (p Paging[T]) HasNext() bool {
	return p.NextHref != ""
}
