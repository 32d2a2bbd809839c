package request

// PullByAppMessageRequest 按客户端幂等键续拉请求（多端同步）
// 使用位置:
//   - internal/handler/delivery_handler.go: PullByAppMessageIdHandler
type PullByAppMessageRequest struct {
	ObjectType   string `json:"object_type" form:"object_type" binding:"required"`
	ObjectId     string `json:"object_id" form:"object_id" binding:"required"`
	AppMessageId string `json:"app_message_id" form:"app_message_id" binding:"required"`
	Cursor       int64  `json:"cursor" form:"cursor"`
	Limit        int    `json:"limit" form:"limit"`
}
