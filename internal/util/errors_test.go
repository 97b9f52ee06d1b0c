package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindAndCode(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ErrAttemptNumberMismatch))
	assert.Equal(t, KindNotFound, KindOf(ErrChallengeNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrPaymentConflict))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("boom")))

	assert.Equal(t, "attempt_number_mismatch", CodeOf(ErrAttemptNumberMismatch))
	assert.Equal(t, "invalid_attempt_number", CodeOf(ErrInvalidAttemptNumber))
	assert.Equal(t, "infrastructure", CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("create: %w", ErrDuplicateEvaluation)
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrDuplicateEvaluation)
}

func TestInfrastructureKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Infrastructure(cause, "find submission")

	assert.Equal(t, KindInfrastructure, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "find submission")
	assert.Contains(t, err.Error(), "connection reset")

	assert.Nil(t, Infrastructure(nil, "noop"))
	// 已分类的错误原样返回
	assert.Same(t, ErrChallengeNotFound, Infrastructure(ErrChallengeNotFound, "find challenge"))
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		ErrInvalidTaxID:       http.StatusBadRequest,
		ErrPaymentNotPending:  http.StatusBadRequest,
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrPermissionDenied:   http.StatusForbidden,
		ErrSubmissionNotFound: http.StatusNotFound,
		ErrAttemptConflict:    http.StatusConflict,
		errors.New("db down"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equalf(t, want, StatusFor(err), "status for %v", err)
	}
}

func TestRespondErrorWritesCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{ErrPaymentAmountMismatch, http.StatusBadRequest, "payment_amount_mismatch"},
		{ErrChallengeNotFound, http.StatusNotFound, "challenge_not_found"},
		{ErrPaymentConflict, http.StatusConflict, "payment_conflict"},
		{Infrastructure(errors.New("db down"), "op"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.status, resp.Code)
		assert.Equal(t, tc.message, resp.Message)
	}
}
