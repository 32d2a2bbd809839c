package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，HandleParamError 用它翻译校验错误
var Trans ut.Translator

// InitTrans 初始化绑定校验的错误翻译
// 发送、拉取、话题等请求 DTO 的字段错误以 json tag 名报给客户端
// （object_id 而不是 ObjectId），locale 传 "zh" 或 "en"
func InitTrans(locale string) (err error) {
	// Gin v1.9+ 下 binding.Validator 可能尚未初始化
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// 错误信息里的字段名取 json tag，与客户端传参一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhT := zh.New()
	enT := en.New()
	// 英文兜底，支持中英两种 locale
	uni := ut.New(enT, zhT, enT)

	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	return
}

// RemoveTopStruct 去掉翻译结果里的结构体名前缀
// 如 "PullAfterRequest.object_id" 只保留 "object_id"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator 实现 binding.StructValidator，
// 仅作为 binding.Validator 为空时的兜底
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
