package util

import (
	"errors"
	"fmt"
)

// FieldError 指出具体哪个字段有问题
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError 提交内容不完整或格式错误，在任何写操作之前返回
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, fields ...FieldError) error {
	return &ValidationError{Message: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError 引用了不存在的模块/学员/帖子等
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func NewNotFoundError(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ConflictError 并发冲突或重复记录；Retriable 表示调用方可以重试
type ConflictError struct {
	Message   string
	Retriable bool
}

func NewConflictError(msg string, retriable bool) error {
	return &ConflictError{Message: msg, Retriable: retriable}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError 角色不足或模块未解锁
type ForbiddenError struct {
	Message string
}

func NewForbiddenError(msg string) error {
	return &ForbiddenError{Message: msg}
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsForbidden(err error) bool {
	var f *ForbiddenError
	return errors.As(err, &f)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncompleteSubmit   = "incomplete submission"
	ErrModuleLocked       = "module locked"
	ErrNotEligible        = "not eligible for certificate"
)
