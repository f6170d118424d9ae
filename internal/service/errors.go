package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrEventMalformed       = errors.New("通知事件格式错误")
	ErrEventMissingTarget   = errors.New("通知事件缺少接收者")
	ErrNotificationNotFound = errors.New("通知不存在")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrEventMalformed:       BadRequest,
	ErrEventMissingTarget:   BadRequest,
	ErrNotificationNotFound: NotFound,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
