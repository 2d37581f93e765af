package errors

import "errors"

// ErrReconcileInProgress 已有对账任务在执行
var ErrReconcileInProgress = errors.New("已有对账任务正在执行")

// ErrConcurrentReconcile 标记已处理时影响行数与预期不一致：原始打卡已被其他对账任务处理
var ErrConcurrentReconcile = errors.New("原始打卡已被其他对账任务处理")
