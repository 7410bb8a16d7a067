package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

var (
	tokenContextKey   = "userToken"
	sessionContextKey = "session"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the user id, Id the session the user record is kept under.
type Claims struct {
	jwt.StandardClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

func NewClaims(sess session.Session, conf *core.Config) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.FormatInt(sess.User.ID, 10),
			Id:        sess.ID,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		Name: sess.User.Name,
		Role: sess.User.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(sessionContextKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}

type authApi struct {
	*Server
}

func registerAuthAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := authApi{s}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout, authed...)
	ag.GET("/session", api.session, authed...)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	usr, err := api.UserSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	api.Metrics.Login(err == nil)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}

	sess, err := api.Sessions.Create(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	token, err := GenerateToken(NewClaims(sess, api.Conf), api.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: sess.User, ExpiresAt: sess.ExpiresAt})
}

func (api *authApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.Sessions.Destroy(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "destroying session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) session(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token     string    `json:"token"`
		User      user.User `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
