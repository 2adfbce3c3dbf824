package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer はこのAPIが発行するJWTのiss値。
const Issuer = "tarzan-api"

// contextKeyUserID は認証済みユーザーIDをGinコンテキストに格納するキー。
const contextKeyUserID = "user_id"

// ErrInvalidToken はJWTの検証に失敗したことを表す。
var ErrInvalidToken = errors.New("トークンが無効です")

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID int64 `json:"user_id"`
	// Username はユーザー名。
	Username string `json:"username"`
}

// GenerateJWT はユーザー情報からHS256で署名したJWTトークンを生成する。
func GenerateJWT(secret string, userID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		UserID:   userID,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークン文字列を検証し、クレームを返す。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTAuth はBearerトークンを検証するGinミドルウェアを返す。
// Authorizationヘッダーが無い場合は何もせず後続に処理を渡す。
// ヘッダーがあり検証に失敗した場合は401を返す。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		SetUserID(c, claims.UserID)
		c.Next()
	}
}

// UserCheck は認証済みユーザーが現在も有効かどうかを返す。
type UserCheck func(c *gin.Context) (bool, error)

// RequireAuth は有効な認証済みユーザーが居ない場合に401を返すGinミドルウェアを返す。
// JWTAuthやセッション認証の後に適用する。checkがnilの場合はユーザーIDの有無だけを確認する。
// checkのエラーはc.Errorに登録し、応答はエラーハンドラに任せる。
func RequireAuth(check UserCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok := false
		if _, authenticated := GetUserID(c); authenticated {
			ok = true
			if check != nil {
				var err error
				if ok, err = check(c); err != nil {
					_ = c.Error(err)
					c.Abort()
					return
				}
			}
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証情報が提供されていません",
			})
			return
		}
		c.Next()
	}
}

// SetUserID は認証済みユーザーIDをGinコンテキストに設定する。
func SetUserID(c *gin.Context, userID int64) {
	c.Set(contextKeyUserID, userID)
}

// GetUserID はGinコンテキストから認証済みユーザーIDを取得する。
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
