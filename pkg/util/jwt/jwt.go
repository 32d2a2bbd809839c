package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration // Access Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig *JWTConfig

// Init 初始化 JWT 配置
func Init(secret string, accessExpiryMinutes int) {
	jwtConfig = &JWTConfig{
		Secret:            secret,
		AccessTokenExpiry: time.Duration(accessExpiryMinutes) * time.Minute,
	}
}

// Claims 自定义 JWT 声明
// 信箱身份 (object_type, object_id) 由外部目录服务签发，
// 本服务只做验签，不做权限判定
type Claims struct {
	ObjectType string `json:"object_type"`
	ObjectId   string `json:"object_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成 Access Token
// 正常部署由目录服务签发；这里保留签发能力供本地联调使用
func GenerateAccessToken(objectType, objectId string) (string, error) {
	claims := Claims{
		ObjectType: objectType,
		ObjectId:   objectId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(jwtConfig.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "seqchat",
			Subject:   "access_token",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}

// ParseToken 解析并验证 Token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
