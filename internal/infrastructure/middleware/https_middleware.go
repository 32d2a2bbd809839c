package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 把明文请求 301 到 HTTPS 入口
// 仅在配置开启 enableTlsRedirect 时挂载；网关前置终结 TLS 的部署不需要
func TlsHandler(host string, port int) gin.HandlerFunc {
	// secure 实例在挂载时构建一次，请求路径上只做 Process
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect: true,
		SSLHost:     host + ":" + strconv.Itoa(port),
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			// 中间件内不允许 Fatal，出错终止当前请求即可
			zap.L().Error("tls redirect error", zap.Error(err))
			c.Abort()
			return
		}
		// 命中重定向时响应已写出，Next 不再产生输出
		c.Next()
	}
}
