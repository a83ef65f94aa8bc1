package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserSettings 用户偏好设置，以 JSON 列存储。
// 字段是封闭枚举，写入前必须经过 Validate，不接受任意键值。
type UserSettings struct {
	DefaultSort         string `json:"defaultSort"` // HOT, FRESH, TOP
	AccentColor         string `json:"accentColor"` // purple, green, orange, blue
	HideLikeCounts      bool   `json:"hideLikeCounts"`
	ShowJoinDate        bool   `json:"showJoinDate"`
	EnableNotifications bool   `json:"enableNotifications"`
}

// DefaultSettings 新用户的默认偏好
func DefaultSettings() UserSettings {
	return UserSettings{
		DefaultSort:         "HOT",
		AccentColor:         "purple",
		HideLikeCounts:      false,
		ShowJoinDate:        true,
		EnableNotifications: true,
	}
}

// Validate 校验枚举字段取值
func (s UserSettings) Validate() error {
	switch s.DefaultSort {
	case "HOT", "FRESH", "TOP":
	default:
		return fmt.Errorf("invalid defaultSort: %q", s.DefaultSort)
	}
	switch s.AccentColor {
	case "purple", "green", "orange", "blue":
	default:
		return fmt.Errorf("invalid accentColor: %q", s.AccentColor)
	}
	return nil
}

// Value 实现 driver.Valuer，序列化为 JSON 存库
func (s UserSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner。空列回退到默认设置。
func (s *UserSettings) Scan(value interface{}) error {
	if value == nil {
		*s = DefaultSettings()
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported settings column type %T", value)
	}
	if len(data) == 0 {
		*s = DefaultSettings()
		return nil
	}
	return json.Unmarshal(data, s)
}
