package handler

import (
	"errors"
	"net/http"

	"seqchat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应信封
// 所有接口固定返回 HTTP 200，业务结果看 code：
// 成功为 errorx.CodeSuccess，失败携带 errorx 定义的业务错误码。
// 拉取类接口的 data 是分页载荷（entries + next_cursor + has_more）
type ResponseData struct {
	Code int `json:"code"`           // 业务错误码
	Msg  any `json:"msg"`            // 提示信息；参数错误时是字段到错误的映射
	Data any `json:"data,omitempty"` // 业务数据
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, &ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 业务错误统一出口
// errorx.CodeError 原样带码返回；其余错误一律收敛为服务繁忙，
// 不把存储层细节漏给客户端
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		c.JSON(http.StatusOK, &ResponseData{
			Code: codeErr.Code,
			Msg:  codeErr.Msg,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusOK, &ResponseData{
		Code: errorx.ErrServerBusy.Code,
		Msg:  errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 参数绑定错误出口
// validator 校验错误先经 Trans 翻译再去掉结构体名前缀，
// JSON 解析失败等非校验错误返回通用参数错误
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusOK, &ResponseData{
			Code: errorx.ErrInvalidParam.Code,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	zap.L().Error("param bind error", zap.Error(err))
	c.JSON(http.StatusOK, &ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
