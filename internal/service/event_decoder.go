package service

import (
	"Herald/internal/api/dto"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

var validate = validator.New()

const (
	titleMaxLen   = 50
	titleTruncLen = 47
)

// defaultTypeMap 事件类型到落库类型的内置归一化映射
var defaultTypeMap = map[string]string{
	dto.EventTypePostLike:    "LIKE",
	dto.EventTypePostComment: "COMMENT",
}

// GenericType 未知事件类型的落库类型
const GenericType = "GENERIC"

// DecodeEvent 解析队列消息体为通知事件
// 消息体可能被 {Message: <string>} 传输信封包装一层，最多剥离一层
func DecodeEvent(body string) (*dto.NotificationEvent, error) {
	raw := []byte(body)

	var envelope dto.QueueEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(ErrEventMalformed, err.Error())
	}
	if envelope.Message != "" {
		raw = []byte(envelope.Message)
	}

	var event dto.NotificationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.Wrap(ErrEventMalformed, err.Error())
	}

	if err := validate.Struct(&event); err != nil {
		return nil, ErrEventMissingTarget
	}
	return &event, nil
}

// GenerateMessage 根据事件类型与帖子标题生成通知文案
// 任何输入都不失败：标题缺省回退，超长截断到 47 字符加省略号
func GenerateMessage(eventType, postTitle string) string {
	title := postTitle
	if title == "" {
		title = "your post"
	}
	// 按字符数截断，多字节标题不能切在 rune 中间
	if r := []rune(title); len(r) > titleMaxLen {
		title = string(r[:titleTruncLen]) + "..."
	}

	switch eventType {
	case dto.EventTypePostLike:
		return `Someone liked your post "` + title + `"`
	case dto.EventTypePostComment:
		return `Someone commented on your post "` + title + `"`
	default:
		return "You have a new notification"
	}
}

// NormalizeType 事件类型归一化，映射可由配置覆盖，未命中回退 GENERIC
func NormalizeType(typeMap map[string]string, eventType string) string {
	if len(typeMap) == 0 {
		typeMap = defaultTypeMap
	}
	if v, ok := typeMap[eventType]; ok {
		return v
	}
	return GenericType
}
