// Package handler 提供 HTTP 请求处理器
// 本文件处理本地联调用的 Token 签发
// 正常部署中 Token 由外部目录服务签发，本接口仅在 dev 模式注册
package handler

import (
	"seqchat_server/pkg/errorx"
	"seqchat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

type devTokenRequest struct {
	ObjectType string `json:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" binding:"required"`
}

// DevTokenHandler 签发联调用 Access Token
// POST /auth/devToken
func DevTokenHandler(c *gin.Context) {
	var req devTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	token, err := jwt.GenerateAccessToken(req.ObjectType, req.ObjectId)
	if err != nil {
		HandleError(c, errorx.Wrap(err, errorx.CodeServerBusy, "签发 Token 失败"))
		return
	}
	HandleSuccess(c, gin.H{"access_token": token})
}
