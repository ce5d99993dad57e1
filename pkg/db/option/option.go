package option

import "gorm.io/gorm"

type QuerySortBy struct {
	SortBy  string
	OrderBy string
}

type QueryOptions struct {
	SortBy *QuerySortBy
	Limit  int
	Offset int
}

type QueryOption func(*QueryOptions)

func WithSortBy(sort QuerySortBy) QueryOption {
	return func(o *QueryOptions) { o.SortBy = &sort }
}

func WithLimit(limit int) QueryOption {
	return func(o *QueryOptions) { o.Limit = limit }
}

func WithOffset(offset int) QueryOption {
	return func(o *QueryOptions) { o.Offset = offset }
}

// Apply folds the collected options into a gorm query.
func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	o := &QueryOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.SortBy != nil {
		column := o.SortBy.SortBy
		if column == "" {
			column = "created_at"
		}
		order := o.SortBy.OrderBy
		if order == "" {
			order = "ASC"
		}
		tx = tx.Order(column + " " + order)
	}
	if o.Limit > 0 {
		tx = tx.Limit(o.Limit)
	}
	if o.Offset > 0 {
		tx = tx.Offset(o.Offset)
	}

	return tx
}
