package intox

import (
	"fmt"
	"strings"
)

// Label 醉酒程度分类, 顺序即模型输出的下标
type Label int

const (
	Sober      Label = 0 // 清醒
	Slightly   Label = 1 // 轻度
	Moderately Label = 2 // 中度
	Heavily    Label = 3 // 重度
)

var labelNames = [NumClasses]string{"Sober", "Slightly", "Moderately", "Heavily"}

// Labels 按下标顺序返回所有分类
func Labels() []Label {
	return []Label{Sober, Slightly, Moderately, Heavily}
}

// Valid 是否为合法分类
func (l Label) Valid() bool {
	return l >= Sober && l <= Heavily
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel 按名称解析分类, 不区分大小写
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if strings.EqualFold(s, name) {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("未知分类: %q", s)
}

// MarshalText 以名称序列化, 便于持久化
func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("非法分类: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText 由名称反序列化
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
