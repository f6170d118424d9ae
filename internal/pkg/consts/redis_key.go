package consts

const (
	// NotificationChannelKey 按接收者划分的通知广播频道前缀
	NotificationChannelKey = "notification:"
)
