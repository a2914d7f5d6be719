package workflow

import "errors"

var (
	ErrClassifyFailed  = errors.New("classify failed")
	ErrAggregateFailed = errors.New("aggregate failed")
	ErrPublishFailed   = errors.New("publish failed")
)
