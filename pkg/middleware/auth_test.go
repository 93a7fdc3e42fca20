package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "anon@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serveWithAuth(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := c.Get(ClaimsKey)
		require.True(t, ok)
		resp, _ := json.Marshal(gin.H{"claims": claims, "userId": UserID(c)})
		c.Writer.Write(resp)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveWithAuth(t, "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveWithAuth(t, "BadHeader").Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveWithAuth(t, "Bearer forged").Code)
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveWithAuth(t, "Bearer nosub").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serveWithAuth(t, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
	require.Equal(t, "user1", got["userId"])
}

func TestVerifierFunc(t *testing.T) {
	var ver Verifier = VerifierFunc(func(ctx context.Context, raw string) (Token, error) {
		return &fakeToken{data: map[string]interface{}{"sub": raw}}, nil
	})
	tok, err := ver.Verify(context.Background(), "abc")
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "abc", claims["sub"])
}

type redisRevocations struct{ rdb *redis.Client }

func (r redisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, "revoked:"+token).Result()
	return n > 0, err
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	require.NoError(t, client.Set(context.Background(), "revoked:goodtoken", "1", 5*time.Second).Err())

	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, WithRevocation(redisRevocations{client})), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	// fails closed when the list cannot be read
	m.Close()
	rw = httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
}
