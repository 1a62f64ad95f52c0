package mdlwr

import (
	"net/http"
	"time"

	"hackvote/internal/handlers/apierr"
	"hackvote/pkg/user"

	jwt "github.com/appleboy/gin-jwt/v2"
	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey = "principal"

	claimUserID = "user_id"
	claimRole   = "role"
	roleAdmin   = "admin"
	roleMember  = "participant"
)

// NewAuthMiddleware validates bearer tokens issued by the identity provider.
// Admin rights come from the role claim or from the static admin list.
func NewAuthMiddleware(secret string, admins user.Admins, ttl time.Duration) (*jwt.GinJWTMiddleware, error) {
	if admins == nil {
		admins = user.NewStaticAdmins()
	}

	return jwt.New(&jwt.GinJWTMiddleware{
		Realm:         "hackvote",
		Key:           []byte(secret),
		Timeout:       ttl,
		MaxRefresh:    ttl,
		IdentityKey:   PrincipalKey,
		Unauthorized:  unauthorizedHandler,
		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		// logins happen at the identity provider
		Authenticator: func(c *gin.Context) (interface{}, error) {
			return nil, jwt.ErrFailedAuthentication
		},
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			p, ok := data.(user.Principal)
			if !ok {
				return jwt.MapClaims{}
			}
			role := roleMember
			if p.IsAdmin {
				role = roleAdmin
			}
			return jwt.MapClaims{
				claimUserID: p.UserID,
				claimRole:   role,
			}
		},
		IdentityHandler: func(c *gin.Context) interface{} {
			claims := jwt.ExtractClaims(c)
			userID, _ := claims[claimUserID].(string)
			if userID == "" {
				return nil
			}
			role, _ := claims[claimRole].(string)
			return user.Principal{
				UserID:  userID,
				IsAdmin: role == roleAdmin || admins.IsAdmin(userID),
			}
		},
		Authorizator: func(data interface{}, c *gin.Context) bool {
			_, ok := data.(user.Principal)
			return ok
		},
	})
}

// IssueToken signs a token for p with the middleware's key and timeout.
func IssueToken(mw *jwt.GinJWTMiddleware, p user.Principal) (string, time.Time, error) {
	return mw.TokenGenerator(p)
}

func SetPrincipal(c *gin.Context, p user.Principal) {
	c.Set(PrincipalKey, p)
}

func PrincipalFrom(c *gin.Context) (user.Principal, error) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return user.Principal{}, user.ErrNoPrincipal
	}
	p, ok := v.(user.Principal)
	if !ok || p.UserID == "" {
		return user.Principal{}, user.ErrNoPrincipal
	}
	return p, nil
}

func RequireAdmin(c *gin.Context) {
	p, err := PrincipalFrom(c)
	if err != nil {
		apierr.AbortApiErrJSON(c, http.StatusUnauthorized, apierr.Unauthorized)
		return
	}
	if !p.IsAdmin {
		apierr.AbortApiErrJSON(c, http.StatusForbidden, apierr.AdminOnly)
		return
	}
	c.Next()
}

// a token without a user id fails the Authorizator with 403, it is still an
// authentication failure
func unauthorizedHandler(c *gin.Context, _ int, _ string) {
	apierr.AbortApiErrJSON(c, http.StatusUnauthorized, apierr.Unauthorized)
}
