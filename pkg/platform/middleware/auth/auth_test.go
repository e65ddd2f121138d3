package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "ridelink/pkg/domain"
	"ridelink/pkg/requestcontext"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*Claims, error) {
	args := m.Called(token)
	if c := args.Get(0); c != nil {
		return c.(*Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

type RequireAuthSuite struct {
	suite.Suite
	validator *MockTokenValidator
	handler   http.Handler
	caller    id.Handle
}

func TestRequireAuthSuite(t *testing.T) {
	suite.Run(t, new(RequireAuthSuite))
}

func (s *RequireAuthSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.caller = ""
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = RequireAuth(s.validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.caller = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RequireAuthSuite) serve(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/threads", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *RequireAuthSuite) TestValidTokenSetsCaller() {
	s.validator.On("ValidateToken", "good").Return(&Claims{Subject: "driver-1"}, nil)

	w := s.serve("Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.Equal(id.Handle("driver-1"), s.caller)
}

func (s *RequireAuthSuite) TestMissingHeader() {
	w := s.serve("")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.validator.AssertNotCalled(s.T(), "ValidateToken", mock.Anything)
}

func (s *RequireAuthSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "bad").Return(nil, errors.New("signature"))
	w := s.serve("Bearer bad")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Empty(s.caller)
}

func (s *RequireAuthSuite) TestBlankSubjectRejected() {
	s.validator.On("ValidateToken", "blank").Return(&Claims{Subject: "  "}, nil)
	w := s.serve("Bearer blank")
	s.Equal(http.StatusUnauthorized, w.Code)
}
