package dto

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage      = 1000000
)

type OffsetQuery struct {
	Page  int `query:"page" validate:"gte=1,lte=1000000"`
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

func NewOffsetQuery() OffsetQuery {
	return OffsetQuery{Page: DefaultPage, Limit: DefaultLimit}
}

// CursorQuery carries an opaque row id in AfterCursor. BeforeCursor is
// accepted on the wire only so that it can be rejected explicitly.
type CursorQuery struct {
	Limit        int    `query:"limit" validate:"gte=1,lte=100"`
	AfterCursor  string `query:"afterCursor" validate:"omitempty,max=128"`
	BeforeCursor string `query:"beforeCursor" validate:"omitempty,max=128"`
}

func NewCursorQuery() CursorQuery {
	return CursorQuery{Limit: DefaultLimit}
}

type OffsetPagination struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	HasNext    bool  `json:"hasNext"`
}

type CursorPagination struct {
	Limit       int     `json:"limit"`
	Count       int     `json:"count"`
	StartCursor *string `json:"startCursor"`
	EndCursor   *string `json:"endCursor"`
	HasMore     bool    `json:"hasMore"`
}

type OffsetPage[T any] struct {
	Data       []T              `json:"data"`
	Pagination OffsetPagination `json:"pagination"`
}

type CursorPage[T any] struct {
	Data       []T              `json:"data"`
	Pagination CursorPagination `json:"pagination"`
}
