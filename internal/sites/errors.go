package sites

import (
	"errors"
	"fmt"
)

// ErrEmptyReply 可恢复的空回合：限流(403)或传输层失败
// 调用方不结算、不动策略状态，直接进入下一轮
var ErrEmptyReply = errors.New("empty reply")

// ProtocolError 协议失步：远端载荷无法解析成预期结构
// 按可恢复错误处理（而不是中止进程），本轮同样作废
type ProtocolError struct {
	Endpoint string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol desync on %s: %v", e.Endpoint, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsRecoverable 返回该错误是否允许下注循环继续运行
func IsRecoverable(err error) bool {
	var pe *ProtocolError
	return errors.Is(err, ErrEmptyReply) || errors.As(err, &pe)
}
