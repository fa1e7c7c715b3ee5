package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrSurveyInactive     = errors.New("survey is not active")
	ErrSlugTaken          = errors.New("survey slug already in use")
	ErrSectionNotFound    = errors.New("section not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationUsed     = errors.New("invitation already used")
	ErrInvitationMismatch = errors.New("invitation does not belong to this survey")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrDraftStoreDisabled = errors.New("draft store is not configured")
	ErrNoRecipients       = errors.New("no recipients given")
	ErrEmptySubmission    = errors.New("at least one answer is required")
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 一次校验收集到的全部字段错误
type ValidationError struct {
	Violations []FieldError `json:"violations"`
}

func (e *ValidationError) Add(field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge 追加另一组错误，prefix 非空时作为字段前缀
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for _, v := range other.Violations {
		field := v.Field
		if prefix != "" {
			field = prefix + "." + field
		}
		e.Violations = append(e.Violations, FieldError{Field: field, Message: v.Message})
	}
}

// Err 没有错误时返回 nil，避免返回带类型的 nil 接口
func (e *ValidationError) Err() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ReferenceError 规则指向了不存在的题目位置，只作为警告返回
type ReferenceError struct {
	QuestionOrd int `json:"questionOrd"`
	TargetOrd   int `json:"targetOrd"`
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("question %d: rule target %d does not exist", e.QuestionOrd, e.TargetOrd)
}

// ConflictError 同一问卷已有保存在进行中
type ConflictError struct {
	SurveyID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("survey %d is being saved by another request", e.SurveyID)
}

// TransactionError 批量写入失败，整个批次已回滚
type TransactionError struct {
	SurveyID uint
	Op       string
	Err      error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("survey %d: %s failed: %v", e.SurveyID, e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// DeliveryError 单个收件人的投递失败
type DeliveryError struct {
	Email string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Email, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
