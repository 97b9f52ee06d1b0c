package util

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInfrastructure ErrorKind = "infrastructure"
)

// Error 业务错误只携带类别和机器可读的 code，文案由调用方负责
type Error struct {
	Kind  ErrorKind
	Code  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

var (
	// validation
	ErrInvalidTaxID            = newError(KindValidation, "invalid_tax_id")
	ErrInvalidInput            = newError(KindValidation, "invalid_input")
	ErrPaymentAmountMismatch   = newError(KindValidation, "payment_amount_mismatch")
	ErrAttemptNumberMismatch   = newError(KindValidation, "attempt_number_mismatch")
	ErrInvalidAttemptNumber    = newError(KindValidation, "invalid_attempt_number")
	ErrContentMissing          = newError(KindValidation, "content_missing")
	ErrContentTooLong          = newError(KindValidation, "content_too_long")
	ErrInvalidContentKind      = newError(KindValidation, "invalid_content_kind")
	ErrScoreOutOfRange         = newError(KindValidation, "score_out_of_range")
	ErrNotesTooLong            = newError(KindValidation, "notes_too_long")
	ErrDuplicateEvaluation     = newError(KindValidation, "duplicate_evaluation")
	ErrPaymentNotPending       = newError(KindValidation, "payment_not_pending")
	ErrInvalidPaymentMethod    = newError(KindValidation, "invalid_payment_method")
	ErrChallengeNotActive      = newError(KindValidation, "challenge_not_active")
	ErrChallengeClosed         = newError(KindValidation, "challenge_closed")
	ErrSubmissionNotEvaluable  = newError(KindValidation, "submission_not_evaluable")
	ErrJudgeInactive           = newError(KindValidation, "judge_inactive")
	ErrInvalidStatusTransition = newError(KindValidation, "invalid_status_transition")
	ErrInvalidCredentials      = newError(KindValidation, "invalid_credentials")
	ErrPermissionDenied        = newError(KindValidation, "permission_denied")

	// not found
	ErrParticipantNotFound = newError(KindNotFound, "participant_not_found")
	ErrChallengeNotFound   = newError(KindNotFound, "challenge_not_found")
	ErrLocationNotFound    = newError(KindNotFound, "location_not_found")
	ErrSubmissionNotFound  = newError(KindNotFound, "submission_not_found")

	// conflict（可重试）
	ErrEmailRegistered    = newError(KindConflict, "email_registered")
	ErrAttemptConflict    = newError(KindConflict, "attempt_conflict")
	ErrPaymentConflict    = newError(KindConflict, "payment_conflict")
	ErrEvaluationConflict = newError(KindConflict, "evaluation_conflict")
	ErrStatusConflict     = newError(KindConflict, "status_conflict")
)

// Infrastructure 包装存储/网络错误，保留原始错误链
func Infrastructure(err error, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindInfrastructure, Code: "infrastructure", cause: pkgerrors.Wrap(err, op)}
}

// KindOf 未分类的错误一律视为基础设施错误
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// CodeOf 返回错误 code，未分类错误返回 infrastructure
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return string(KindInfrastructure)
}
