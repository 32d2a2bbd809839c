package constants

const (
	CHANNEL_SIZE        = 100  // 通道大小
	TOPIC_NAME_MAX_LEN  = 50   // 话题名称最大长度（字符数）
	DEFAULT_PAGE_SIZE   = 20   // 拉取消息默认分页大小
	MAX_PAGE_SIZE       = 100  // 拉取消息最大分页大小，超出自动收敛
	REDIS_TIMEOUT       = 1    // redis timeout (分钟)
	SEQ_ALLOC_MAX_RETRY = 10   // 序列号段分配最大重试次数
	SEQ_ALLOC_MIN_BLOCK = 256  // 冷信箱的最小段大小
	EXTRA_EMPTY_JSON    = "{}" // extra 字段的默认值，保持结构化非 NULL
)
