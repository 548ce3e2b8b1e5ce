package content

import "fmt"

// Issue 记录单个条目的警告或错误。
type Issue struct {
	Item    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Item, i.Message)
}

// Report 收集一次流水线运行中的逐项问题，运行不会因单项失败而中断。
type Report struct {
	Processed int
	Warnings  []Issue
	Errors    []Issue
}

func (r *Report) warn(item, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Item: item, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) fail(item, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Item: item, Message: fmt.Sprintf(format, args...)})
}

// HasErrors 表示是否有条目处理失败。
func (r *Report) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}
