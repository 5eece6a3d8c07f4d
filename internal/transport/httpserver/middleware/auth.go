package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"league-app-go/internal/config"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
	"league-app-go/pkg/logger"
)

// Auth identifies the caller in one of three modes: a fixed mock user
// (AUTH_SKIP), locally verified HS256 bearer tokens (AUTH_JWT_SECRET), or the
// Supabase user endpoint. Every mode ends with the stored profile, whose role
// decides whether the caller is a global administrator.
type Auth struct {
	mode      authMode
	baseURL   string
	apiKey    string
	jwtSecret []byte
	jwtIssuer string
	client    *http.Client
	profiles  ProfileStore
	mockUser  User
	log       logger.Logger
}

type authMode int

const (
	modeSupabase authMode = iota
	modeJWT
	modeMock
)

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	Role      shared.GlobalRole
}

// Actor is the caller as seen by the core operations.
func (u User) Actor() shared.Actor {
	return shared.NewActor(u.ID, u.Role)
}

type ProfileStore interface {
	EnsureProfile(ctx context.Context, userID, email, avatarURL string) (*user.Profile, error)
}

func NewAuth(cfg config.AuthConfig, supabase config.SupabaseConfig, profiles ProfileStore, log logger.Logger) *Auth {
	timeout := supabase.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	a := &Auth{
		mode:      modeSupabase,
		baseURL:   strings.TrimRight(supabase.URL, "/"),
		apiKey:    supabase.PublishableKey,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtIssuer: cfg.JWTIssuer,
		client: &http.Client{
			Timeout: timeout,
		},
		profiles: profiles,
		mockUser: User{
			ID:        strings.TrimSpace(cfg.MockUserID),
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			Name:      strings.TrimSpace(cfg.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
			Role:      shared.GlobalRole(strings.ToLower(strings.TrimSpace(cfg.MockUserRole))),
		},
		log: log,
	}
	switch {
	case cfg.SkipAuth:
		a.mode = modeMock
	case cfg.JWTSecret != "":
		a.mode = modeJWT
	}
	return a
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			u   User
			err error
		)
		switch a.mode {
		case modeMock:
			u = a.mockUser
			if u.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
		case modeJWT:
			u, err = a.verifyJWT(r.Header.Get("Authorization"))
		default:
			if a.baseURL == "" || a.apiKey == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}
			u, err = a.fetchSupabaseUser(r.Context(), r.Header.Get("Authorization"))
		}
		if err != nil {
			a.log.Debug("auth: rejected request", "reason", err.Error(), "path", r.URL.Path)
			unauthorized(w)
			return
		}

		mockRole := a.mode == modeMock && u.Role == shared.RoleAdmin
		if a.profiles != nil {
			profile, err := a.profiles.EnsureProfile(r.Context(), u.ID, u.Email, u.AvatarURL)
			if err != nil {
				a.log.InternalError("auth: ensure profile failed", err, "user_id", u.ID)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			u.Role = profile.Role
		}
		if mockRole {
			u.Role = shared.RoleAdmin
		}
		if u.Role == "" {
			u.Role = shared.RoleUser
		}

		ctx := WithUser(r.Context(), u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errNoBearer = errors.New("missing bearer token")

func (a *Auth) verifyJWT(header string) (User, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return User{}, errNoBearer
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if a.jwtIssuer != "" {
		opts = append(opts, jwt.WithIssuer(a.jwtIssuer))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, opts...); err != nil {
		return User{}, err
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return User{}, errors.New("token has no subject")
	}
	metadata, _ := claims["user_metadata"].(map[string]interface{})
	email, _ := claims["email"].(string)

	return User{
		ID:        subject,
		Email:     email,
		Name:      firstNonEmpty(stringFromMap(metadata, "name"), stringFromMap(metadata, "full_name")),
		AvatarURL: stringFromMap(metadata, "avatar_url"),
	}, nil
}

func (a *Auth) fetchSupabaseUser(ctx context.Context, header string) (User, error) {
	token, ok := bearerToken(header)
	if !ok {
		return User{}, errNoBearer
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, errors.New("identity provider returned " + resp.Status)
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, err
	}

	userID := firstNonEmpty(payload.ID, payload.Sub, payload.User.ID, payload.User.Sub)
	if userID == "" {
		return User{}, errors.New("identity provider returned no user id")
	}

	return User{
		ID:        userID,
		Email:     payload.Email,
		Name:      firstNonEmpty(stringFromMap(payload.UserMetadata, "name"), stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(payload.UserMetadata, "avatar_url"),
	}, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, ok := value.(string)
	if !ok {
		return ""
	}
	return parsed
}
